package importers

import "time"

// Options is the run configuration consumed by the extraction pipeline.
type Options struct {
	// IncludeOtherTypes processes pages and custom post types in addition to posts.
	IncludeOtherTypes bool
	// FilterCategories lists category names dropped from every record.
	FilterCategories []string
	// CustomDateFormat is a Go time layout. Takes precedence over IncludeTimeWithDate.
	CustomDateFormat string
	// IncludeTimeWithDate renders dates as full ISO-8601 timestamps.
	IncludeTimeWithDate bool
	// SaveAttachedImages collects images declared as attachments.
	SaveAttachedImages bool
	// SaveScrapedImages collects images referenced by <img> tags in record bodies.
	SaveScrapedImages bool
}

// DefaultOptions mirrors the defaults of a fresh configuration.
func DefaultOptions() Options {
	return Options{
		FilterCategories:   []string{"uncategorized"},
		SaveAttachedImages: true,
		SaveScrapedImages:  true,
	}
}

// FormatDate renders t according to the configured date policy. The three
// policies are mutually exclusive: custom layout, then ISO-8601 with time,
// then date only.
func (o Options) FormatDate(t time.Time) string {
	t = t.UTC()
	switch {
	case o.CustomDateFormat != "":
		return t.Format(o.CustomDateFormat)
	case o.IncludeTimeWithDate:
		return t.Format(time.RFC3339)
	default:
		return t.Format(time.DateOnly)
	}
}

func (o Options) categoryFiltered(name string) bool {
	for _, f := range o.FilterCategories {
		if f == name {
			return true
		}
	}
	return false
}
