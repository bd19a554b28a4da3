package services

import (
	"sync"
	"time"

	"github.com/mrlokans/wp2md/internal/entities"
)

// RecordSnapshot is a converted record as the preview server shows it.
type RecordSnapshot struct {
	Record   *entities.Record `json:"-"`
	Type     string           `json:"type"`
	Slug     string           `json:"slug"`
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Date     string           `json:"date,omitempty"`
	Path     string           `json:"path"`
	Images   []string         `json:"images,omitempty"`
	Markdown string           `json:"markdown"`
}

// RecordSummary is the list view of a snapshot.
type RecordSummary struct {
	Type  string `json:"type"`
	Slug  string `json:"slug"`
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
}

// RecordStore holds the records of the latest successful run. Every run
// replaces the whole set.
type RecordStore struct {
	mu        sync.RWMutex
	ordered   []*RecordSnapshot
	byKey     map[string]*RecordSnapshot
	updatedAt time.Time
}

func NewRecordStore() *RecordStore {
	return &RecordStore{byKey: make(map[string]*RecordSnapshot)}
}

func storeKey(recordType, slug string) string {
	return recordType + "/" + slug
}

// Replace swaps in a new set of snapshots. When two snapshots share a type
// and slug the first one is kept.
func (s *RecordStore) Replace(snapshots []*RecordSnapshot) {
	byKey := make(map[string]*RecordSnapshot, len(snapshots))
	ordered := make([]*RecordSnapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		key := storeKey(snap.Type, snap.Slug)
		if _, exists := byKey[key]; exists {
			continue
		}
		byKey[key] = snap
		ordered = append(ordered, snap)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ordered = ordered
	s.byKey = byKey
	s.updatedAt = time.Now()
}

// List returns summaries in conversion order, optionally limited to one type.
func (s *RecordStore) List(recordType string) []RecordSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]RecordSummary, 0, len(s.ordered))
	for _, snap := range s.ordered {
		if recordType != "" && snap.Type != recordType {
			continue
		}
		summaries = append(summaries, RecordSummary{
			Type:  snap.Type,
			Slug:  snap.Slug,
			ID:    snap.ID,
			Title: snap.Title,
			Date:  snap.Date,
		})
	}
	return summaries
}

func (s *RecordStore) Get(recordType, slug string) (*RecordSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.byKey[storeKey(recordType, slug)]
	return snap, ok
}

func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// UpdatedAt is the time of the last Replace, zero before the first run.
func (s *RecordStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
