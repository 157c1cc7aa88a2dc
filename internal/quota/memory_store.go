package quota

import (
	"context"
	"sync"
	"time"

	"github.com/jjenkins/agencydash/internal/model"
)

// MemoryStore keeps usage records in process memory. Updates for the same
// user are serialized by a per-user mutex.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*memoryRecord
}

type memoryRecord struct {
	mu  sync.Mutex
	rec model.UsageRecord
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*memoryRecord)}
}

func (s *MemoryStore) entry(userID string, now time.Time) *memoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[userID]
	if !ok {
		e = &memoryRecord{rec: model.UsageRecord{UserID: userID, LastViewedAt: now}}
		s.records[userID] = e
	}
	return e
}

// Update implements Store
func (s *MemoryStore) Update(ctx context.Context, userID string, now time.Time, fn UpdateFunc) (model.UsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.UsageRecord{}, err
	}

	e := s.entry(userID, now)
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.rec
	if fn(&rec) {
		e.rec = rec
	}
	return rec, nil
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, userID string) (*model.UsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	e, ok := s.records[userID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	rec := e.rec
	return &rec, nil
}

// Set overwrites a user's record
func (s *MemoryStore) Set(rec model.UsageRecord) {
	e := s.entry(rec.UserID, rec.LastViewedAt)
	e.mu.Lock()
	e.rec = rec
	e.mu.Unlock()
}
