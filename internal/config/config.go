package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Input
		Output
		Records
		Images
		Events
		Catalog
		HTTP
		Sync
		Logging
		Global
	}

	Input struct {
		ExportPath string // WordPress export (WXR) file
	}
	Output struct {
		Dir               string
		PostFolders       bool // <slug>/index.md instead of <slug>.md
		PrefixDate        bool
		DateFolders       string // none | year | year-month
		Overwrite         bool
		FrontmatterFields []string
	}
	Records struct {
		IncludeOtherTypes   bool
		FilterCategories    []string
		DateFormat          string // Go time layout, overrides IncludeTime
		IncludeTimeWithDate bool
	}
	Images struct {
		SaveAttached bool
		SaveScraped  bool
		Download     bool
		RequestDelay time.Duration
		Timeout      time.Duration
		Workers      int
	}
	Events struct {
		Enabled      bool
		RecordType   string
		BaseURL      string // Site URL; defaults to the export's channel link
		RequestDelay time.Duration
		Timeout      time.Duration
		MaxInFlight  int
		AddressMode  string // strict | all
	}
	Catalog struct {
		Enabled bool
		Path    string
	}
	HTTP struct {
		Port int32
		Host string
	}
	Sync struct {
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Logging struct {
		Level  string
		Format string // json | console
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

// NewConfig reads the configuration from the environment, a .env file in the
// working directory and, when WP2MD_CONFIG names one, a config file.
func NewConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Input: Input{
			ExportPath: v.GetString("EXPORT_PATH"),
		},
		Output: Output{
			Dir:               v.GetString("OUTPUT_DIR"),
			PostFolders:       v.GetBool("POST_FOLDERS"),
			PrefixDate:        v.GetBool("PREFIX_DATE"),
			DateFolders:       v.GetString("DATE_FOLDERS"),
			Overwrite:         v.GetBool("OVERWRITE"),
			FrontmatterFields: SplitList(v.GetString("FRONTMATTER_FIELDS")),
		},
		Records: Records{
			IncludeOtherTypes:   v.GetBool("INCLUDE_OTHER_TYPES"),
			FilterCategories:    SplitList(v.GetString("FILTER_CATEGORIES")),
			DateFormat:          v.GetString("DATE_FORMAT"),
			IncludeTimeWithDate: v.GetBool("INCLUDE_TIME"),
		},
		Images: Images{
			SaveAttached: v.GetBool("SAVE_ATTACHED_IMAGES"),
			SaveScraped:  v.GetBool("SAVE_SCRAPED_IMAGES"),
			Download:     v.GetBool("DOWNLOAD_IMAGES"),
			RequestDelay: v.GetDuration("IMAGE_REQUEST_DELAY"),
			Timeout:      v.GetDuration("IMAGE_TIMEOUT"),
			Workers:      v.GetInt("IMAGE_WORKERS"),
		},
		Events: Events{
			Enabled:      v.GetBool("EVENTS_ENABLED"),
			RecordType:   v.GetString("EVENTS_RECORD_TYPE"),
			BaseURL:      v.GetString("EVENTS_BASE_URL"),
			RequestDelay: v.GetDuration("EVENTS_REQUEST_DELAY"),
			Timeout:      v.GetDuration("EVENTS_TIMEOUT"),
			MaxInFlight:  v.GetInt("EVENTS_MAX_IN_FLIGHT"),
			AddressMode:  v.GetString("EVENTS_ADDRESS_MODE"),
		},
		Catalog: Catalog{
			Enabled: v.GetBool("CATALOG_ENABLED"),
			Path:    v.GetString("CATALOG_PATH"),
		},
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Sync: Sync{
			Schedule: v.GetString("SYNC_SCHEDULE"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("export_path", "")
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("post_folders", true)
	v.SetDefault("prefix_date", false)
	v.SetDefault("date_folders", "none")
	v.SetDefault("overwrite", false)
	v.SetDefault("frontmatter_fields", "title,date,categories,tags,coverImage")

	v.SetDefault("include_other_types", false)
	v.SetDefault("filter_categories", "uncategorized")
	v.SetDefault("date_format", "")
	v.SetDefault("include_time", false)

	v.SetDefault("save_attached_images", true)
	v.SetDefault("save_scraped_images", true)
	v.SetDefault("download_images", true)
	v.SetDefault("image_request_delay", "500ms")
	v.SetDefault("image_timeout", "30s")
	v.SetDefault("image_workers", 4)

	// Event enrichment defaults
	v.SetDefault("events_enabled", false)
	v.SetDefault("events_record_type", "event")
	v.SetDefault("events_base_url", "")
	v.SetDefault("events_request_delay", "5s")
	v.SetDefault("events_timeout", "10s")
	v.SetDefault("events_max_in_flight", 4)
	v.SetDefault("events_address_mode", "strict")

	v.SetDefault("catalog_enabled", true)
	v.SetDefault("catalog_path", DefaultCatalogPath)

	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("sync_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
}

// Validate rejects values the converter cannot act on.
func (c *Config) Validate() error {
	switch c.Output.DateFolders {
	case "none", "year", "year-month":
	default:
		return fmt.Errorf("invalid date folders %q: want none, year or year-month", c.Output.DateFolders)
	}
	switch c.Events.AddressMode {
	case "strict", "all":
	default:
		return fmt.Errorf("invalid events address mode %q: want strict or all", c.Events.AddressMode)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output directory is not set")
	}
	if c.Images.Workers < 1 {
		return fmt.Errorf("image workers must be at least 1, got %d", c.Images.Workers)
	}
	if c.Events.Enabled && c.Events.MaxInFlight < 1 {
		return fmt.Errorf("events max in flight must be at least 1, got %d", c.Events.MaxInFlight)
	}
	return nil
}

// SplitList parses a comma separated list, dropping blank entries.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
