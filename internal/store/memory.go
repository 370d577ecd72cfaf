package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ayaan2907/powerBiChat/internal/core"
)

var _ core.TokenStore = (*InMemoryTokenStore)(nil)

type InMemoryTokenStore struct {
	mu      sync.RWMutex
	records []core.EmbedTokenRecord
	now     func() time.Time
}

func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{
		records: make([]core.EmbedTokenRecord, 0),
		now:     time.Now,
	}
}

func (s *InMemoryTokenStore) Save(_ context.Context, rec core.EmbedTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return nil
}

// ListActive returns unexpired records, soonest expiry first.
func (s *InMemoryTokenStore) ListActive(_ context.Context) ([]core.EmbedTokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]core.EmbedTokenRecord, 0)
	now := s.now()

	for _, r := range s.records {
		if r.ExpiresAt.After(now) {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].ExpiresAt.Before(active[j].ExpiresAt)
	})

	return active, nil
}

func (s *InMemoryTokenStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	active := make([]core.EmbedTokenRecord, 0, len(s.records))
	var deletedCount int64

	for _, r := range s.records {
		if r.ExpiresAt.After(now) {
			active = append(active, r)
		} else {
			deletedCount++
		}
	}

	s.records = active
	return deletedCount, nil
}
