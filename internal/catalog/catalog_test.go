package catalog

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wp2md/internal/entities"
)

func setupTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	return cat
}

func TestCatalog_Runs(t *testing.T) {
	cat := setupTestCatalog(t)

	t.Run("StartRun creates a running run", func(t *testing.T) {
		runID, err := cat.StartRun("export.xml", "out")
		require.NoError(t, err)
		assert.Len(t, runID, 36)

		run, err := cat.GetRun(runID)
		require.NoError(t, err)
		assert.Equal(t, entities.RunStatusRunning, run.Status)
		assert.Equal(t, "export.xml", run.ExportPath)
		assert.Nil(t, run.CompletedAt)
	})

	t.Run("FinishRun stores counters", func(t *testing.T) {
		runID, err := cat.StartRun("export.xml", "out")
		require.NoError(t, err)

		err = cat.FinishRun(runID, RunStats{RecordsExtracted: 5, RecordsSkipped: 1, RecordsWritten: 4, ImagesFound: 3, ImagesDownloaded: 2, ImagesFailed: 1}, nil)
		require.NoError(t, err)

		run, err := cat.GetRun(runID)
		require.NoError(t, err)
		assert.Equal(t, entities.RunStatusCompleted, run.Status)
		assert.Equal(t, 5, run.RecordsExtracted)
		assert.Equal(t, 4, run.RecordsWritten)
		assert.Equal(t, 2, run.ImagesDownloaded)
		assert.NotNil(t, run.CompletedAt)
	})

	t.Run("FinishRun with error marks the run failed", func(t *testing.T) {
		runID, err := cat.StartRun("broken.xml", "out")
		require.NoError(t, err)

		require.NoError(t, cat.FinishRun(runID, RunStats{}, errors.New("decode export: EOF")))

		run, err := cat.GetRun(runID)
		require.NoError(t, err)
		assert.Equal(t, entities.RunStatusFailed, run.Status)
		assert.Equal(t, "decode export: EOF", run.Error)
	})

	t.Run("FinishRun rejects unknown runs", func(t *testing.T) {
		assert.Error(t, cat.FinishRun("missing", RunStats{}, nil))
	})

	t.Run("GetRun reports unknown runs", func(t *testing.T) {
		_, err := cat.GetRun("missing")
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("RecentRuns returns newest first", func(t *testing.T) {
		runs, err := cat.RecentRuns(2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.False(t, runs[0].StartedAt.Before(runs[1].StartedAt))
	})
}

func TestCatalog_Records(t *testing.T) {
	cat := setupTestCatalog(t)
	runID, err := cat.StartRun("export.xml", "out")
	require.NoError(t, err)
	record := &entities.Record{Meta: entities.Meta{ID: "1", Slug: "hello", Type: "post"}}

	_, ok, err := cat.RecordHash("out/post/hello.md")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cat.SaveRecord(record, "out/post/hello.md", "abc"))
	hash, ok, err := cat.RecordHash("out/post/hello.md")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", hash)

	require.NoError(t, cat.SaveRecord(record, "out/post/hello.md", "def"))
	hash, _, err = cat.RecordHash("out/post/hello.md")
	require.NoError(t, err)
	assert.Equal(t, "def", hash)

	count, err := cat.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var written entities.WrittenRecord
	require.NoError(t, cat.DB.Where("path = ?", "out/post/hello.md").First(&written).Error)
	assert.Equal(t, runID, written.RunID)
	assert.Equal(t, "post", written.RecordType)
}

func TestCatalog_ImagesConcurrently(t *testing.T) {
	cat := setupTestCatalog(t)
	_, err := cat.StartRun("export.xml", "out")
	require.NoError(t, err)

	paths := []string{"a.png", "b.png", "c.png", "d.png", "a.png"}
	var wg sync.WaitGroup
	for _, p := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cat.SaveImage("1", "https://site.test/"+p, filepath.Join("out", "images", p)))
		}()
	}
	wg.Wait()

	count, err := cat.CountImages()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
