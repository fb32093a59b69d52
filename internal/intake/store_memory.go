package intake

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps intake records in process memory. Upserts perform the
// read-merge-write cycle under one lock, so concurrent writers for the same
// patient key are serialized instead of racing on a stale snapshot.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

var _ StoreInterface = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &record, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, update RecordUpdate) (*Record, error) {
	key := update.Profile.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := mergeRecord(s.records[key], update)
	merged.UpdatedAt = time.Now().UTC()
	s.records[key] = merged
	return &merged, nil
}

func (s *MemoryStore) List(ctx context.Context, limit, offset int) ([]Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		all = append(all, record)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].PatientKey < all[j].PatientKey
		}
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	total := len(all)
	if offset >= total {
		return []Record{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}
