package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wp2md/internal/catalog"
	"github.com/mrlokans/wp2md/internal/config"
	"github.com/mrlokans/wp2md/internal/entities"
	"github.com/mrlokans/wp2md/internal/enrichment"
	"github.com/mrlokans/wp2md/internal/metrics"
	"github.com/mrlokans/wp2md/internal/wxr"
)

const siteExport = `<?xml version="1.0" encoding="UTF-8" ?>
<rss version="2.0"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:dc="http://purl.org/dc/elements/1.1/"
	xmlns:wp="http://wordpress.org/export/1.2/"
>
<channel>
<title>Site Test</title>
<link>%[1]s</link>
<item>
	<title>Hello World</title>
	<link>%[1]s/hello-world/</link>
	<pubDate>Wed, 01 Jan 2020 12:00:00 +0000</pubDate>
	<dc:creator>admin</dc:creator>
	<content:encoded><![CDATA[Intro text

<img src="/img/a.png" alt="a" />]]></content:encoded>
	<wp:post_id>1</wp:post_id>
	<wp:post_name>hello-world</wp:post_name>
	<wp:status>publish</wp:status>
	<wp:post_type>post</wp:post_type>
	<category domain="category" nicename="news"><![CDATA[News]]></category>
</item>
<item>
	<title>Meetup</title>
	<link>%[1]s/events/meetup/</link>
	<pubDate>Thu, 02 Jan 2020 18:00:00 +0000</pubDate>
	<dc:creator>admin</dc:creator>
	<content:encoded><![CDATA[Come along.]]></content:encoded>
	<wp:post_id>2</wp:post_id>
	<wp:post_name>meetup</wp:post_name>
	<wp:status>publish</wp:status>
	<wp:post_type>event</wp:post_type>
</item>
<item>
	<title>Broken</title>
	<dc:creator>admin</dc:creator>
	<wp:status>publish</wp:status>
	<wp:post_type>post</wp:post_type>
</item>
</channel>
</rss>`

// newSiteServer serves one image and the events API for record 2.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/img/a.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	})
	mux.HandleFunc("/wp-json/wp/v2/events/2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"event_data":{"start_datetime":"2020-01-10 18:00:00","venue":"Hall","city":"Springfield","address":""}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeExport(t *testing.T, siteURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.xml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(siteExport, siteURL)), 0644))
	return path
}

func testConfig(exportPath, outputDir string) *config.Config {
	return &config.Config{
		Input: config.Input{ExportPath: exportPath},
		Output: config.Output{
			Dir:               outputDir,
			PostFolders:       true,
			DateFolders:       "none",
			FrontmatterFields: []string{"title", "date", "categories"},
		},
		Records: config.Records{
			IncludeOtherTypes: true,
			FilterCategories:  []string{"uncategorized"},
		},
		Images: config.Images{
			SaveAttached: true,
			SaveScraped:  true,
			Download:     true,
			Timeout:      5 * time.Second,
			Workers:      2,
		},
		Events: config.Events{
			Enabled:     true,
			RecordType:  "event",
			Timeout:     2 * time.Second,
			MaxInFlight: 2,
			AddressMode: "strict",
		},
	}
}

func TestConversionService_Convert(t *testing.T) {
	srv := newSiteServer(t)
	outputDir := t.TempDir()
	cfg := testConfig(writeExport(t, srv.URL), outputDir)

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	m := metrics.New()
	store := NewRecordStore()

	svc := NewConversionService(cfg, nil)
	svc.SetCatalog(cat)
	svc.SetObserver(m)
	svc.SetStore(store)

	report, err := svc.Convert(context.Background())
	require.NoError(t, err)

	t.Run("report counts", func(t *testing.T) {
		assert.Equal(t, 2, report.TotalRecords())
		assert.Equal(t, 1, report.Skipped)
		assert.Equal(t, 1, report.AssetsFound)
		assert.Equal(t, 1, report.Enriched)
		assert.Equal(t, 0, report.EnrichmentFailed)
		assert.Equal(t, 2, report.Export.RecordsWritten)
		assert.Equal(t, 1, report.Images.Downloaded)
		assert.NotEmpty(t, report.RunID)
	})

	t.Run("record files are written", func(t *testing.T) {
		post, err := os.ReadFile(filepath.Join(outputDir, "post", "hello-world", "index.md"))
		require.NoError(t, err)
		assert.Contains(t, string(post), `title: "Hello World"`)
		assert.Contains(t, string(post), "date: 2020-01-01")
		assert.Contains(t, string(post), "images/a.png")

		event, err := os.ReadFile(filepath.Join(outputDir, "event", "meetup", "index.md"))
		require.NoError(t, err)
		assert.Contains(t, string(event), "venue: Hall")
		assert.Contains(t, string(event), "address: Springfield")
	})

	t.Run("images are downloaded", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(outputDir, "post", "hello-world", "images", "a.png"))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("run is cataloged", func(t *testing.T) {
		run, err := cat.GetRun(report.RunID)
		require.NoError(t, err)
		assert.Equal(t, entities.RunStatusCompleted, run.Status)
		assert.Equal(t, 2, run.RecordsWritten)
		assert.Equal(t, 1, run.ImagesDownloaded)

		images, err := cat.CountImages()
		require.NoError(t, err)
		assert.Equal(t, int64(1), images)
	})

	t.Run("metrics are observed", func(t *testing.T) {
		assert.Equal(t, float64(1), testutil.ToFloat64(m.RecordsExtracted.WithLabelValues("event")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.RecordsSkipped))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.Runs.WithLabelValues("completed")))
	})

	t.Run("store is published", func(t *testing.T) {
		assert.Equal(t, 2, store.Len())
		snap, ok := store.Get("event", "meetup")
		require.True(t, ok)
		assert.Equal(t, "Meetup", snap.Title)
		assert.Contains(t, snap.Markdown, "venue: Hall")
	})

	t.Run("second run skips existing files and images", func(t *testing.T) {
		again, err := svc.Convert(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, again.Export.RecordsWritten)
		assert.Equal(t, 2, again.Export.RecordsSkipped)
		assert.Equal(t, 1, again.Images.Skipped)
	})
}

const galleryExport = `<?xml version="1.0" encoding="UTF-8" ?>
<rss version="2.0"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:dc="http://purl.org/dc/elements/1.1/"
	xmlns:wp="http://wordpress.org/export/1.2/"
>
<channel>
<title>Site Test</title>
<link>%[1]s</link>
<item>
	<title>Gallery</title>
	<link>%[1]s/gallery/</link>
	<pubDate>Wed, 01 Jan 2020 12:00:00 +0000</pubDate>
	<dc:creator>admin</dc:creator>
	<content:encoded><![CDATA[<img src="/uploads/my%%20photo.jpg" alt="p" />]]></content:encoded>
	<wp:post_id>7</wp:post_id>
	<wp:post_name>gallery</wp:post_name>
	<wp:status>publish</wp:status>
	<wp:post_type>post</wp:post_type>
	<wp:postmeta>
		<wp:meta_key>_thumbnail_id</wp:meta_key>
		<wp:meta_value>8</wp:meta_value>
	</wp:postmeta>
</item>
<item>
	<title>my photo</title>
	<wp:post_id>8</wp:post_id>
	<wp:post_parent>0</wp:post_parent>
	<wp:status>inherit</wp:status>
	<wp:post_type>attachment</wp:post_type>
	<wp:attachment_url>%[1]s/uploads/my%%20photo.jpg</wp:attachment_url>
</item>
</channel>
</rss>`

func newGalleryConfig(t *testing.T) *config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/uploads/") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	t.Cleanup(srv.Close)

	exportPath := filepath.Join(t.TempDir(), "export.xml")
	require.NoError(t, os.WriteFile(exportPath, []byte(fmt.Sprintf(galleryExport, srv.URL)), 0644))

	cfg := testConfig(exportPath, t.TempDir())
	cfg.Records.IncludeOtherTypes = false
	cfg.Events.Enabled = false
	cfg.Output.FrontmatterFields = []string{"title", "coverImage"}
	return cfg
}

func TestConversionService_CoverImageMatchesDownloadedFile(t *testing.T) {
	cfg := newGalleryConfig(t)

	report, err := NewConversionService(cfg, nil).Convert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Images.Downloaded)

	recordDir := filepath.Join(cfg.Output.Dir, "post", "gallery")
	file, err := os.Open(filepath.Join(recordDir, "index.md"))
	require.NoError(t, err)
	defer file.Close()

	var matter struct {
		CoverImage string `yaml:"coverImage"`
	}
	body, err := frontmatter.Parse(file, &matter)
	require.NoError(t, err)

	assert.Equal(t, "my%20photo.jpg", matter.CoverImage)
	assert.FileExists(t, filepath.Join(recordDir, "images", matter.CoverImage))
	assert.Contains(t, string(body), "images/my%2520photo.jpg")
}

func TestConversionService_NoDownloadKeepsImageSources(t *testing.T) {
	cfg := newGalleryConfig(t)
	cfg.Images.Download = false

	report, err := NewConversionService(cfg, nil).Convert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Images.Downloaded)

	post, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "post", "gallery", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(post), "/uploads/my%20photo.jpg")
	assert.NotContains(t, string(post), "](images/")
	assert.NoDirExists(t, filepath.Join(cfg.Output.Dir, "post", "gallery", "images"))
}

func TestConversionService_MissingExport(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.xml"), t.TempDir())
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })

	svc := NewConversionService(cfg, nil)
	svc.SetCatalog(cat)

	report, err := svc.Convert(context.Background())
	require.Error(t, err)
	require.NotNil(t, report)

	run, err := cat.GetRun(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "open export")
}

func TestConversionService_EnrichmentFailureKeepsRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	outputDir := t.TempDir()
	cfg := testConfig(writeExport(t, srv.URL), outputDir)
	cfg.Images.Download = false

	report, err := NewConversionService(cfg, nil).Convert(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Enriched)
	assert.Equal(t, 1, report.EnrichmentFailed)
	assert.FileExists(t, filepath.Join(outputDir, "event", "meetup", "index.md"))
}

func TestConversionService_RejectsOverlappingRuns(t *testing.T) {
	svc := NewConversionService(testConfig("export.xml", t.TempDir()), nil)
	svc.mu.Lock()
	defer svc.mu.Unlock()

	_, err := svc.Convert(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestEventsBaseURL(t *testing.T) {
	doc := &wxr.Document{Channel: wxr.Channel{Link: "https://site.test"}}

	url, err := eventsBaseURL("https://api.test", doc)
	require.NoError(t, err)
	assert.Equal(t, "https://api.test", url)

	url, err = eventsBaseURL("", doc)
	require.NoError(t, err)
	assert.Equal(t, "https://site.test", url)

	_, err = eventsBaseURL("", &wxr.Document{})
	assert.ErrorIs(t, err, enrichment.ErrNotConfigured)
}
