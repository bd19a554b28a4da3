package config

const (
	// DefaultCatalogPath is the default path for the conversion catalog database
	DefaultCatalogPath = "./wp2md.db"

	// DefaultOutputDir is where record files are written when nothing else is configured
	DefaultOutputDir = "./out"

	// ConfigFileEnv names the environment variable holding an optional config file path
	ConfigFileEnv = "WP2MD_CONFIG"
)
