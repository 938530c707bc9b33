// Package memory holds chunks in process memory. It backs tests and dry
// runs where no database should be touched.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"docindex/internal/domain"
)

type row struct {
	record    domain.Record
	filename  string
	strategy  string
	createdAt time.Time
}

// Store is an in-memory chunk store.
type Store struct {
	mu   sync.RWMutex
	rows []row
}

var _ domain.ChunkStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) SaveBatch(_ context.Context, filename, strategy string, records []domain.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, rec := range records {
		s.rows = append(s.rows, row{record: rec, filename: filename, strategy: strategy, createdAt: now})
	}
	return len(records), nil
}

func (s *Store) CountByFile(_ context.Context, filename string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.rows {
		if r.filename == filename {
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteByFile(_ context.Context, filename string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	deleted := 0
	for _, r := range s.rows {
		if r.filename == filename {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return deleted, nil
}

func (s *Store) Filenames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var names []string
	for _, r := range s.rows {
		if _, ok := seen[r.filename]; ok {
			continue
		}
		seen[r.filename] = struct{}{}
		names = append(names, r.filename)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
