package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"finbot/internal/core"
)

// DefaultMemoryCapacity bounds MemoryStore when no capacity is given.
const DefaultMemoryCapacity = 1000

// MemoryStore keeps the most recent reports in process memory. It has the
// same ordering and idempotency as ReportRepository and is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    []core.Report // insertion order, oldest first
	ids      map[string]struct{}
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity, ids: make(map[string]struct{})}
}

// SaveReport stores the report. Saving an ID twice keeps the first copy.
func (s *MemoryStore) SaveReport(_ context.Context, rep core.Report) error {
	if rep.ID == "" {
		return fmt.Errorf("save report: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[rep.ID]; ok {
		return nil
	}
	s.items = append(s.items, rep)
	s.ids[rep.ID] = struct{}{}

	if over := len(s.items) - s.capacity; over > 0 {
		for _, old := range s.items[:over] {
			delete(s.ids, old.ID)
		}
		s.items = append([]core.Report(nil), s.items[over:]...)
	}
	return nil
}

// ListReports returns the newest reports first.
func (s *MemoryStore) ListReports(_ context.Context, limit int) ([]core.Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	s.mu.Lock()
	out := append([]core.Report(nil), s.items...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []core.Report{}
	}
	return out, nil
}

// GetReport returns one report or sql.ErrNoRows, matching ReportRepository.
func (s *MemoryStore) GetReport(_ context.Context, id string) (core.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Report{}, sql.ErrNoRows
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Len returns the number of stored reports.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
