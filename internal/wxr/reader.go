// Package wxr reads WordPress eXtended RSS exports.
//
// Every field of an item is decoded as a sequence of raw values, because
// exports produced by different WordPress versions and plugins omit or repeat
// elements freely. Callers never index those sequences directly; they go
// through the accessor methods on Item, which return an optional scalar
// (value, ok) or an ordered sequence.
package wxr

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Document is the parsed export.
type Document struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

// Channel holds the site-level data and every exported item.
type Channel struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
	Items []Item `xml:"item"`
}

// Item is one exported content item: post, page, attachment, custom type.
type Item struct {
	Titles         []string    `xml:"title"`
	Links          []string    `xml:"link"`
	PubDates       []string    `xml:"pubDate"`
	Creators       []string    `xml:"creator"`
	Encoded        []encoded   `xml:"encoded"`
	PostIDs        []string    `xml:"post_id"`
	PostNames      []string    `xml:"post_name"`
	PostTypes      []string    `xml:"post_type"`
	Statuses       []string    `xml:"status"`
	PostParents    []string    `xml:"post_parent"`
	AttachmentURLs []string    `xml:"attachment_url"`
	CategoryList   []Category  `xml:"category"`
	MetaEntries    []MetaEntry `xml:"postmeta"`
}

// Category is a category-like entry attached to an item. Domain tells
// categories ("category") apart from tags ("post_tag") and custom taxonomies.
type Category struct {
	Domain   string `xml:"domain,attr"`
	Nicename string `xml:"nicename,attr"`
	Name     string `xml:",chardata"`
}

// MetaEntry is one postmeta key/value pair.
type MetaEntry struct {
	Key   string `xml:"meta_key"`
	Value string `xml:"meta_value"`
}

// encoded captures both content:encoded and excerpt:encoded; the two are
// told apart by namespace.
type encoded struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// Read parses an export from r.
func Read(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return &doc, nil
}

// ReadFile parses the export stored at path.
func ReadFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer file.Close()

	return Read(file)
}

// Items returns pointers to all items in document order.
func (d *Document) Items() []*Item {
	items := make([]*Item, len(d.Channel.Items))
	for i := range d.Channel.Items {
		items[i] = &d.Channel.Items[i]
	}
	return items
}

// ItemsOfType returns the items whose post type equals postType.
func (d *Document) ItemsOfType(postType string) []*Item {
	var items []*Item
	for _, item := range d.Items() {
		if t, ok := item.PostType(); ok && t == postType {
			items = append(items, item)
		}
	}
	return items
}

func first(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	v := strings.TrimSpace(values[0])
	if v == "" {
		return "", false
	}
	return v, true
}

// Title returns the item title.
func (it *Item) Title() (string, bool) { return first(it.Titles) }

// Link returns the canonical permalink of the item.
func (it *Item) Link() (string, bool) { return first(it.Links) }

// PubDate returns the raw RFC-2822 publish date.
func (it *Item) PubDate() (string, bool) { return first(it.PubDates) }

// Creator returns the author login (dc:creator).
func (it *Item) Creator() (string, bool) { return first(it.Creators) }

// PostID returns the numeric item ID as a string.
func (it *Item) PostID() (string, bool) { return first(it.PostIDs) }

// Name returns the raw, possibly percent-encoded, post name.
func (it *Item) Name() (string, bool) { return first(it.PostNames) }

// PostType returns the declared item type.
func (it *Item) PostType() (string, bool) { return first(it.PostTypes) }

// Status returns the publishing status (publish, draft, trash...).
func (it *Item) Status() (string, bool) { return first(it.Statuses) }

// ParentID returns the parent item ID. WordPress writes "0" for no parent.
func (it *Item) ParentID() (string, bool) { return first(it.PostParents) }

// AttachmentURL returns the file URL of an attachment item.
func (it *Item) AttachmentURL() (string, bool) { return first(it.AttachmentURLs) }

// Content returns the raw body markup (content:encoded). Body whitespace is
// preserved.
func (it *Item) Content() (string, bool) {
	return it.encodedValue(func(space string) bool {
		return space == "content" || strings.Contains(space, "/modules/content")
	})
}

// Excerpt returns the raw excerpt markup (excerpt:encoded).
func (it *Item) Excerpt() (string, bool) {
	return it.encodedValue(func(space string) bool {
		return space == "excerpt" || strings.Contains(space, "/excerpt")
	})
}

func (it *Item) encodedValue(match func(space string) bool) (string, bool) {
	for _, e := range it.Encoded {
		if match(e.XMLName.Space) {
			if strings.TrimSpace(e.Value) == "" {
				return "", false
			}
			return e.Value, true
		}
	}
	return "", false
}

// Categories returns category-like entries in document order.
func (it *Item) Categories() []Category {
	return it.CategoryList
}

// CategoriesInDomain returns the entries whose domain equals domain.
func (it *Item) CategoriesInDomain(domain string) []Category {
	var out []Category
	for _, c := range it.CategoryList {
		if c.Domain == domain {
			out = append(out, c)
		}
	}
	return out
}

// Meta returns the value of the first postmeta entry keyed key. A missing
// postmeta block and a missing key are both reported as not found.
func (it *Item) Meta(key string) (string, bool) {
	for _, m := range it.MetaEntries {
		if strings.TrimSpace(m.Key) == key {
			v := strings.TrimSpace(m.Value)
			return v, v != ""
		}
	}
	return "", false
}
