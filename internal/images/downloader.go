// Package images downloads record images next to the written markdown files.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/utils"
)

// Job is one image to store in Dir.
type Job struct {
	RecordID string
	URL      string
	Dir      string
}

// Result summarises a download batch.
type Result struct {
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Tracker records downloaded images (optional).
type Tracker interface {
	SaveImage(recordID, url, path string) error
}

type Options struct {
	// RequestDelay spaces request starts.
	RequestDelay time.Duration
	Timeout      time.Duration
	Workers      int
}

func DefaultOptions() Options {
	return Options{
		RequestDelay: 500 * time.Millisecond,
		Timeout:      30 * time.Second,
		Workers:      4,
	}
}

// Downloader fetches images with pacing and bounded concurrency. Files are
// written to a temp file first and renamed into place.
type Downloader struct {
	httpClient *http.Client
	opts       Options
	tracker    Tracker
	logger     logger.Logger
}

func NewDownloader(opts Options, log logger.Logger) *Downloader {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Downloader{
		httpClient: &http.Client{},
		opts:       opts,
		logger:     log,
	}
}

// SetTracker sets the catalog that downloaded images are recorded in.
func (d *Downloader) SetTracker(tracker Tracker) {
	d.tracker = tracker
}

// Download stores every job's image. Existing files are skipped; failures are
// counted and logged, never returned.
func (d *Downloader) Download(ctx context.Context, jobs []Job) Result {
	limit := rate.Inf
	if d.opts.RequestDelay > 0 {
		limit = rate.Every(d.opts.RequestDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var downloaded, skipped, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(d.opts.Workers)

	seen := make(map[string]bool)
	for _, job := range jobs {
		filename := utils.ImageFilename(job.URL)
		if filename == "" {
			failed.Add(1)
			d.logger.Warn("Image URL has no filename", logger.String("url", job.URL))
			continue
		}
		target := filepath.Join(job.Dir, filename)
		if seen[target] {
			continue
		}
		seen[target] = true

		if _, err := os.Stat(target); err == nil {
			skipped.Add(1)
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			failed.Add(1)
			continue
		}
		g.Go(func() error {
			if err := d.fetch(ctx, job.URL, target); err != nil {
				failed.Add(1)
				d.logger.Warn("Failed to download image",
					logger.String("record_id", job.RecordID),
					logger.String("url", job.URL),
					logger.Error(err),
				)
				return nil
			}
			downloaded.Add(1)
			if d.tracker != nil {
				if err := d.tracker.SaveImage(job.RecordID, job.URL, target); err != nil {
					d.logger.Warn("Failed to catalog image", logger.String("path", target), logger.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	result := Result{
		Downloaded: int(downloaded.Load()),
		Skipped:    int(skipped.Load()),
		Failed:     int(failed.Load()),
	}
	d.logger.Info("Image download completed",
		logger.Int("downloaded", result.Downloaded),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", result.Failed),
	)
	return result
}

func (d *Downloader) fetch(ctx context.Context, url, target string) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "wp2md/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create images dir: %w", err)
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(dir, ".image_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, target)
}
