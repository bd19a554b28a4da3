package entities

import (
	"strings"
	"time"
)

// ScrapedAssetID is the asset ID used for images found in body markup.
// Such assets have no attachment identity of their own.
const ScrapedAssetID = ""

// Record is the normalized form of one exported content item.
type Record struct {
	Meta        Meta        `json:"meta"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Content     string      `json:"content"`
}

// Meta holds identity and image data used while writing the record.
type Meta struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	CoverImageID string    `json:"cover_image_id,omitempty"`
	Type         string    `json:"type"`
	PublishedAt  time.Time `json:"published_at"`
	ImageURLs    []string  `json:"image_urls"`
}

// Frontmatter holds the fields rendered at the top of the markdown file.
type Frontmatter struct {
	Title      string        `json:"title"`
	Date       string        `json:"date,omitempty"`
	Categories []string      `json:"categories,omitempty"`
	Tags       []string      `json:"tags,omitempty"`
	CoverImage string        `json:"cover_image,omitempty"`
	Excerpt    string        `json:"excerpt,omitempty"`
	SourceID   string        `json:"source_id"`
	SourceType string        `json:"source_type"`
	SourceSlug string        `json:"source_slug"`
	Creator    string        `json:"creator"`
	Event      *EventDetails `json:"event,omitempty"`
}

// EventDetails is the data merged into an event record after enrichment.
type EventDetails struct {
	Start     string `json:"start_datetime,omitempty"`
	End       string `json:"end_datetime,omitempty"`
	Venue     string `json:"venue,omitempty"`
	Address   string `json:"address,omitempty"`
	SourceURL string `json:"ical_source_url,omitempty"`
}

// HasImageURL reports whether url is already attached to the record.
func (r *Record) HasImageURL(url string) bool {
	for _, u := range r.Meta.ImageURLs {
		if u == url {
			return true
		}
	}
	return false
}

// AddImageURL appends url unless it is already present. It reports whether
// the URL was added.
func (r *Record) AddImageURL(url string) bool {
	if r.HasImageURL(url) {
		return false
	}
	r.Meta.ImageURLs = append(r.Meta.ImageURLs, url)
	return true
}

// Asset is an image discovered in the export and the record that may own it.
type Asset struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
	URL    string `json:"url"`
}

// Declared reports whether the asset came from an attachment item.
func (a Asset) Declared() bool {
	return a.ID != ScrapedAssetID
}

// Filename returns the path segment after the last slash of the asset URL.
func (a Asset) Filename() string {
	return FilenameFromURL(a.URL)
}

// FilenameFromURL returns everything after the last "/" in url.
func FilenameFromURL(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}
