package utils

import (
	"regexp"
	"strings"

	"github.com/mrlokans/wp2md/internal/entities"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// maxFilenameLength leaves room for a date prefix and extension under the
// usual 255 byte limit.
const maxFilenameLength = 200

// SanitizeFilename makes a slug or image name safe to use as a path segment.
// Returns fallback when nothing usable is left.
func SanitizeFilename(filename, fallback string) string {
	// before the control range below would drop them
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// "." and ".." would escape the target directory
	filename = strings.Trim(filename, ".")

	if len(filename) > maxFilenameLength {
		filename = truncateUTF8(filename, maxFilenameLength)
	}

	if filename == "" {
		return fallback
	}
	return filename
}

// ImageFilename returns the name an image URL is stored under: the raw last
// path segment, as in entities.FilenameFromURL, with query and fragment
// removed and unsafe characters dropped. Percent escapes are kept so the name
// matches the record's coverImage.
func ImageFilename(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return SanitizeFilename(entities.FilenameFromURL(rawURL), "")
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	// step back to a rune boundary
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}
