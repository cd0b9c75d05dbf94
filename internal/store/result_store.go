// Package store keeps the accepted plates of the current session.
package store

import (
	"sync"
	"time"

	"plate-stabilizer/internal/domain/plate"
)

// ResultStore is an ordered list of saved plates with at most one record per
// distinct text. All methods are safe for concurrent use.
type ResultStore struct {
	mu      sync.Mutex
	records []plate.SavedRecord
	index   map[string]struct{}
	now     func() time.Time
}

func New() *ResultStore {
	return &ResultStore{
		index: make(map[string]struct{}),
		now:   time.Now,
	}
}

// Accept appends a record for text unless one already exists. Comparison is
// exact and case-sensitive.
func (s *ResultStore) Accept(text string, patternUsed plate.PatternName, filterWasEnabled bool) (plate.SavedRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.index[text]; dup {
		return plate.SavedRecord{}, false
	}

	rec := plate.SavedRecord{
		Text:             text,
		AcceptedAt:       plate.NewTimestamp(s.now()),
		Confidence:       plate.StableConfidence,
		PatternUsed:      patternUsed,
		FilterWasEnabled: filterWasEnabled,
	}
	s.records = append(s.records, rec)
	s.index[text] = struct{}{}
	return rec, true
}

func (s *ResultStore) Contains(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[text]
	return ok
}

// DeleteAt removes the record at index. Out-of-range indexes are ignored.
func (s *ResultStore) DeleteAt(index int) (plate.SavedRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return plate.SavedRecord{}, false
	}
	rec := s.records[index]
	s.records = append(s.records[:index], s.records[index+1:]...)
	delete(s.index, rec.Text)
	return rec, true
}

func (s *ResultStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.index = make(map[string]struct{})
}

func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a copy of the saved records in acceptance order.
func (s *ResultStore) Records() []plate.SavedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]plate.SavedRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Export snapshots the store together with the filter settings in effect.
func (s *ResultStore) Export(filter plate.FilterConfig) plate.ExportPayload {
	return plate.ExportPayload{
		ExportTimestamp: plate.NewTimestamp(s.now()),
		FilterSettings:  filter,
		Detections:      s.Records(),
	}
}
