package exporters

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/wp2md/internal/entities"
)

// Frontmatter field names accepted in Options.FrontmatterFields.
const (
	FieldTitle      = "title"
	FieldDate       = "date"
	FieldCategories = "categories"
	FieldTags       = "tags"
	FieldCoverImage = "coverImage"
	FieldExcerpt    = "excerpt"
	FieldSourceID   = "sourceId"
	FieldSourceType = "sourceType"
	FieldSourceSlug = "sourceSlug"
	FieldCreator    = "creator"
)

// DefaultFrontmatterFields are written when no fields are configured.
var DefaultFrontmatterFields = []string{
	FieldTitle,
	FieldDate,
	FieldCategories,
	FieldTags,
	FieldCoverImage,
}

// eventFields are appended after the configured fields for enriched records.
var eventFields = []string{"start_datetime", "end_datetime", "venue", "address", "ical_source_url"}

// GenerateMarkdown renders a record as YAML frontmatter followed by its body.
// Fields are written in the given order; empty ones are left out.
func GenerateMarkdown(record *entities.Record, fields []string) (string, error) {
	if len(fields) == 0 {
		fields = DefaultFrontmatterFields
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range fields {
		value, ok := fieldValue(record, strings.TrimSpace(field))
		if ok {
			mapping.Content = append(mapping.Content, key(field), value)
		}
	}
	if event := record.Frontmatter.Event; event != nil {
		values := []string{event.Start, event.End, event.Venue, event.Address, event.SourceURL}
		for i, name := range eventFields {
			if values[i] != "" {
				mapping.Content = append(mapping.Content, key(name), str(values[i]))
			}
		}
	}

	var b strings.Builder
	b.WriteString("---\n")
	if len(mapping.Content) > 0 {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(mapping); err != nil {
			return "", fmt.Errorf("encode frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encode frontmatter: %w", err)
		}
		b.Write(buf.Bytes())
	}
	b.WriteString("---\n")

	if content := strings.TrimSpace(record.Content); content != "" {
		b.WriteString("\n")
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func fieldValue(record *entities.Record, field string) (*yaml.Node, bool) {
	fm := record.Frontmatter
	switch field {
	case FieldTitle:
		// titles are always double quoted
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fm.Title, Style: yaml.DoubleQuotedStyle}, fm.Title != ""
	case FieldDate:
		return date(fm.Date), fm.Date != ""
	case FieldCategories:
		return list(fm.Categories), len(fm.Categories) > 0
	case FieldTags:
		return list(fm.Tags), len(fm.Tags) > 0
	case FieldCoverImage:
		return str(fm.CoverImage), fm.CoverImage != ""
	case FieldExcerpt:
		return str(fm.Excerpt), fm.Excerpt != ""
	case FieldSourceID:
		return str(fm.SourceID), fm.SourceID != ""
	case FieldSourceType:
		return str(fm.SourceType), fm.SourceType != ""
	case FieldSourceSlug:
		return str(fm.SourceSlug), fm.SourceSlug != ""
	case FieldCreator:
		return str(fm.Creator), fm.Creator != ""
	default:
		return nil, false
	}
}

func key(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

// str lets the encoder quote the value only when it would not read back as a string.
func str(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// date emits ISO dates unquoted so static site generators read them as timestamps.
func date(value string) *yaml.Node {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if _, err := time.Parse(layout, value); err == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
		}
	}
	return str(value)
}

func list(values []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range values {
		seq.Content = append(seq.Content, str(v))
	}
	return seq
}
