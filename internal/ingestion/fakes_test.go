package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aevon-lab/cc-reporting/internal/core/storage"
)

// memoryStore is an in-memory RecordStore keyed by natural key.
type memoryStore struct {
	mu         sync.Mutex
	rows       map[storage.Kind]map[string]storage.Record
	failInsert map[int]bool
	inserts    int
	deletes    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[storage.Kind]map[string]storage.Record{}, failInsert: map[int]bool{}}
}

func (s *memoryStore) HasAny(_ context.Context, kind storage.Kind, rng storage.TimeRange) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows[kind] {
		if kind == storage.KindDirectory || inRange(startOf(r), rng) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) InsertBatch(_ context.Context, kind storage.Kind, records []storage.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if s.failInsert[s.inserts] {
		return 0, errors.New("duplicate key value violates unique constraint")
	}
	if s.rows[kind] == nil {
		s.rows[kind] = map[string]storage.Record{}
	}
	var n int64
	for _, r := range records {
		key := r.NaturalKey()
		if key == "" {
			continue
		}
		if _, ok := s.rows[kind][key]; ok {
			continue
		}
		s.rows[kind][key] = r
		n++
	}
	return n, nil
}

func (s *memoryStore) DeleteRange(_ context.Context, kind storage.Kind, rng storage.TimeRange) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	var n int64
	for key, r := range s.rows[kind] {
		if inRange(startOf(r), rng) {
			delete(s.rows[kind], key)
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) count(kind storage.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[kind])
}

func (s *memoryStore) get(kind storage.Kind, key string) storage.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[kind][key]
}

func inRange(t time.Time, rng storage.TimeRange) bool {
	return !t.Before(rng.From) && !t.After(rng.To)
}

func startOf(r storage.Record) time.Time {
	switch v := r.(type) {
	case storage.QueueInteraction:
		return v.StartTime
	case storage.AgentPerformance:
		return v.StartTime
	case storage.AgentTimecard:
		return v.StartTime
	case storage.AgentEngagement:
		return v.StartTime
	case storage.CallLog:
		return v.StartTime
	}
	return time.Time{}
}

type staticTokens map[string]string

func (t staticTokens) GetToken(_ context.Context, callerID string) (string, bool, error) {
	token, ok := t[callerID]
	return token, ok, nil
}
