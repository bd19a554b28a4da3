package exporters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wp2md/internal/entities"
	"github.com/mrlokans/wp2md/internal/logger"
)

type parsedFrontmatter struct {
	Title         string   `yaml:"title"`
	Date          string   `yaml:"date"`
	Categories    []string `yaml:"categories"`
	Tags          []string `yaml:"tags"`
	CoverImage    string   `yaml:"coverImage"`
	Creator       string   `yaml:"creator"`
	StartDatetime string   `yaml:"start_datetime"`
	Venue         string   `yaml:"venue"`
	Address       string   `yaml:"address"`
	ICalSourceURL string   `yaml:"ical_source_url"`
}

func sampleRecord() *entities.Record {
	return &entities.Record{
		Meta: entities.Meta{
			ID:          "1",
			Slug:        "hello-world",
			Type:        "post",
			PublishedAt: time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		Frontmatter: entities.Frontmatter{
			Title:      `Hello: "World"`,
			Date:       "2020-01-01",
			Categories: []string{"news", "café"},
			Tags:       []string{"go"},
			CoverImage: "b.gif",
			Creator:    "admin",
		},
		Content: "Hello **world**",
	}
}

// --- GenerateMarkdown Tests ---

func TestGenerateMarkdown(t *testing.T) {
	t.Run("writes ordered frontmatter and body", func(t *testing.T) {
		markdown, err := GenerateMarkdown(sampleRecord(), nil)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(markdown, "---\ntitle: "))
		assert.Contains(t, markdown, "date: 2020-01-01\n")
		assert.Contains(t, markdown, "categories:\n  - news\n  - café\n")
		assert.Contains(t, markdown, "coverImage: b.gif\n")
		assert.NotContains(t, markdown, "creator")
		assert.True(t, strings.HasSuffix(markdown, "---\n\nHello **world**\n"))

		titleAt := strings.Index(markdown, "title:")
		dateAt := strings.Index(markdown, "date:")
		tagsAt := strings.Index(markdown, "tags:")
		assert.Less(t, titleAt, dateAt)
		assert.Less(t, dateAt, tagsAt)
	})

	t.Run("round trips through a frontmatter parser", func(t *testing.T) {
		markdown, err := GenerateMarkdown(sampleRecord(), []string{FieldTitle, FieldDate, FieldCategories, FieldTags, FieldCoverImage, FieldCreator})
		require.NoError(t, err)

		var fm parsedFrontmatter
		body, err := frontmatter.Parse(strings.NewReader(markdown), &fm)
		require.NoError(t, err)

		assert.Equal(t, `Hello: "World"`, fm.Title)
		assert.Equal(t, "2020-01-01", fm.Date)
		assert.Equal(t, []string{"news", "café"}, fm.Categories)
		assert.Equal(t, []string{"go"}, fm.Tags)
		assert.Equal(t, "b.gif", fm.CoverImage)
		assert.Equal(t, "admin", fm.Creator)
		assert.Equal(t, "Hello **world**", strings.TrimSpace(string(body)))
	})

	t.Run("omits empty fields", func(t *testing.T) {
		record := &entities.Record{Meta: entities.Meta{ID: "2", Type: "page"}}

		markdown, err := GenerateMarkdown(record, nil)
		require.NoError(t, err)

		assert.Equal(t, "---\n---\n", markdown)
	})

	t.Run("appends event details when present", func(t *testing.T) {
		record := sampleRecord()
		record.Frontmatter.Event = &entities.EventDetails{
			Start:     "2024-05-01 18:00:00",
			Venue:     "Town Hall",
			Address:   "1 Main St, Springfield",
			SourceURL: "https://site.test/e.ics",
		}

		markdown, err := GenerateMarkdown(record, []string{FieldTitle})
		require.NoError(t, err)

		var fm parsedFrontmatter
		_, err = frontmatter.Parse(strings.NewReader(markdown), &fm)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01 18:00:00", fm.StartDatetime)
		assert.Equal(t, "Town Hall", fm.Venue)
		assert.Equal(t, "1 Main St, Springfield", fm.Address)
		assert.Equal(t, "https://site.test/e.ics", fm.ICalSourceURL)
		assert.NotContains(t, markdown, "end_datetime")
	})

	t.Run("quotes values that would not read back as strings", func(t *testing.T) {
		record := sampleRecord()
		record.Frontmatter.Tags = []string{"true", "2024"}

		markdown, err := GenerateMarkdown(record, []string{FieldTags})
		require.NoError(t, err)

		assert.Contains(t, markdown, `- "true"`)
		assert.Contains(t, markdown, `- "2024"`)
	})
}

// --- Path policy Tests ---

func TestMarkdownExporter_RecordPath(t *testing.T) {
	record := sampleRecord()

	tests := []struct {
		name       string
		opts       Options
		wantPath   string
		wantImages string
	}{
		{
			name:       "flat",
			opts:       Options{OutputDir: "out"},
			wantPath:   "out/post/hello-world.md",
			wantImages: "out/post/images",
		},
		{
			name:       "post folders",
			opts:       Options{OutputDir: "out", PostFolders: true},
			wantPath:   "out/post/hello-world/index.md",
			wantImages: "out/post/hello-world/images",
		},
		{
			name:       "year folders with date prefix",
			opts:       Options{OutputDir: "out", DateFolders: DateFoldersYear, PrefixDate: true},
			wantPath:   "out/post/2020/2020-01-01-hello-world.md",
			wantImages: "out/post/2020/images",
		},
		{
			name:       "year-month folders with post folders",
			opts:       Options{OutputDir: "out", DateFolders: DateFoldersYearMonth, PostFolders: true},
			wantPath:   "out/post/2020/01/hello-world/index.md",
			wantImages: "out/post/2020/01/hello-world/images",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := NewMarkdownExporter(tt.opts, nil)
			assert.Equal(t, filepath.FromSlash(tt.wantPath), exporter.RecordPath(record))
			assert.Equal(t, filepath.FromSlash(tt.wantImages), exporter.ImagesDir(record))
		})
	}
}

func TestMarkdownExporter_RecordPath_Fallbacks(t *testing.T) {
	exporter := NewMarkdownExporter(Options{OutputDir: "out", DateFolders: DateFoldersYear, PrefixDate: true}, nil)
	record := &entities.Record{Meta: entities.Meta{ID: "42", Type: "page"}}

	assert.Equal(t, filepath.FromSlash("out/page/42.md"), exporter.RecordPath(record))
}

// --- Export Tests ---

type memoryTracker struct {
	hashes map[string]string
	saved  []string
}

func (m *memoryTracker) RecordHash(path string) (string, bool, error) {
	h, ok := m.hashes[path]
	return h, ok, nil
}

func (m *memoryTracker) SaveRecord(_ *entities.Record, path, hash string) error {
	if m.hashes == nil {
		m.hashes = make(map[string]string)
	}
	m.hashes[path] = hash
	m.saved = append(m.saved, path)
	return nil
}

func TestMarkdownExporter_Export(t *testing.T) {
	t.Run("writes one file per record", func(t *testing.T) {
		dir := t.TempDir()
		exporter := NewMarkdownExporter(Options{OutputDir: dir}, logger.NewNop())
		page := &entities.Record{Meta: entities.Meta{ID: "2", Slug: "about", Type: "page"}, Content: "About"}

		result, err := exporter.Export([]*entities.Record{sampleRecord(), page})

		require.NoError(t, err)
		assert.Equal(t, 2, result.RecordsWritten)
		assert.Zero(t, result.RecordsSkipped)
		require.Len(t, result.Files, 2)
		assert.True(t, result.Files[0].Written)

		content, err := os.ReadFile(filepath.Join(dir, "post", "hello-world.md"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "Hello **world**")
		assert.FileExists(t, filepath.Join(dir, "page", "about.md"))
	})

	t.Run("skips existing files unless overwrite is set", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "post", "hello-world.md")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("hand edited"), 0644))

		result, err := NewMarkdownExporter(Options{OutputDir: dir}, nil).Export([]*entities.Record{sampleRecord()})
		require.NoError(t, err)
		assert.Equal(t, 1, result.RecordsSkipped)
		require.Len(t, result.Files, 1)
		assert.False(t, result.Files[0].Written)
		content, _ := os.ReadFile(path)
		assert.Equal(t, "hand edited", string(content))

		result, err = NewMarkdownExporter(Options{OutputDir: dir, Overwrite: true}, nil).Export([]*entities.Record{sampleRecord()})
		require.NoError(t, err)
		assert.Equal(t, 1, result.RecordsWritten)
		content, _ = os.ReadFile(path)
		assert.Contains(t, string(content), "Hello **world**")
	})

	t.Run("tracker skips unchanged records on overwrite", func(t *testing.T) {
		dir := t.TempDir()
		tracker := &memoryTracker{}
		exporter := NewMarkdownExporter(Options{OutputDir: dir, Overwrite: true}, nil)
		exporter.SetTracker(tracker)

		first, err := exporter.Export([]*entities.Record{sampleRecord()})
		require.NoError(t, err)
		assert.Equal(t, 1, first.RecordsWritten)
		assert.Len(t, tracker.saved, 1)

		second, err := exporter.Export([]*entities.Record{sampleRecord()})
		require.NoError(t, err)
		assert.Zero(t, second.RecordsWritten)
		assert.Equal(t, 1, second.RecordsSkipped)

		changed := sampleRecord()
		changed.Content = "Updated"
		third, err := exporter.Export([]*entities.Record{changed})
		require.NoError(t, err)
		assert.Equal(t, 1, third.RecordsWritten)
		assert.Len(t, tracker.saved, 2)
	})

	t.Run("requires an output directory", func(t *testing.T) {
		_, err := NewMarkdownExporter(Options{}, nil).Export([]*entities.Record{sampleRecord()})
		assert.Error(t, err)
	})
}
