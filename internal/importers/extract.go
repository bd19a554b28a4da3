package importers

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mrlokans/wp2md/internal/entities"
	"github.com/mrlokans/wp2md/internal/wxr"
)

// ContentTranslator turns raw body markup into the output text format.
// Implementations must be safe to reuse across every record of a run.
type ContentTranslator interface {
	Translate(rawBody string) (string, error)
}

// skippedStatuses are never extracted.
var skippedStatuses = map[string]bool{
	"trash": true,
	"draft": true,
}

// pubDateLayouts are the RFC-2822 variants observed in exports.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// Extractor builds normalized records from export items.
type Extractor struct {
	opts       Options
	translator ContentTranslator
}

// NewExtractor creates an Extractor. The translator is shared by every record.
func NewExtractor(opts Options, translator ContentTranslator) *Extractor {
	return &Extractor{opts: opts, translator: translator}
}

// ExtractType builds a record for every item of recordType that is neither
// trashed nor a draft. Records are returned in export order. Items that fail
// extraction are reported through the error slice and left out.
func (e *Extractor) ExtractType(doc *wxr.Document, recordType string) ([]*entities.Record, []error) {
	var records []*entities.Record
	var errs []error

	for i, item := range doc.ItemsOfType(recordType) {
		if status, _ := item.Status(); skippedStatuses[status] {
			continue
		}

		record, err := e.ExtractRecord(item, recordType, i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, record)
	}

	return records, errs
}

// ExtractRecord builds the record for a single item.
func (e *Extractor) ExtractRecord(item *wxr.Item, recordType string, index int) (*entities.Record, error) {
	id, ok := item.PostID()
	if !ok {
		return nil, &MalformedRecordError{RecordType: recordType, Index: index, Field: "post_id"}
	}
	creator, ok := item.Creator()
	if !ok {
		return nil, &MalformedRecordError{RecordType: recordType, Index: index, ID: id, Field: "creator"}
	}

	slug := ""
	if name, ok := item.Name(); ok {
		slug = DecodeSlug(name)
	}
	coverImageID, _ := item.Meta("_thumbnail_id")
	title, _ := item.Title()

	record := &entities.Record{
		Meta: entities.Meta{
			ID:           id,
			Slug:         slug,
			CoverImageID: coverImageID,
			Type:         recordType,
		},
		Frontmatter: entities.Frontmatter{
			Title:      title,
			Categories: e.categories(item),
			Tags:       decodeNames(item.CategoriesInDomain("post_tag")),
			SourceID:   id,
			SourceType: recordType,
			SourceSlug: slug,
			Creator:    creator,
		},
	}

	if raw, ok := item.PubDate(); ok {
		if published, err := ParsePubDate(raw); err == nil {
			record.Meta.PublishedAt = published
			record.Frontmatter.Date = e.opts.FormatDate(published)
		}
	}

	if excerpt, ok := item.Excerpt(); ok {
		record.Frontmatter.Excerpt = strings.TrimSpace(excerpt)
	}

	if e.translator != nil {
		body, _ := item.Content()
		content, err := e.translator.Translate(body)
		if err != nil {
			return nil, &MalformedRecordError{RecordType: recordType, Index: index, ID: id, Field: "content", Err: err}
		}
		record.Content = content
	}

	return record, nil
}

func (e *Extractor) categories(item *wxr.Item) []string {
	var out []string
	for _, name := range decodeNames(item.CategoriesInDomain("category")) {
		if !e.opts.categoryFiltered(name) {
			out = append(out, name)
		}
	}
	return out
}

// decodeNames returns the decoded, de-duplicated names of entries.
// The nicename attribute is preferred; the element text is the fallback.
func decodeNames(entries []wxr.Category) []string {
	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Nicename)
		if name == "" {
			name = strings.TrimSpace(entry.Name)
		}
		name = DecodeSlug(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// DecodeSlug percent-decodes a post name. Invalid escapes are left as they are.
func DecodeSlug(name string) string {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}

// ParsePubDate parses an RFC-2822 publish date and returns it in UTC.
func ParsePubDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized publish date %q", raw)
}
