package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"github.com/jjenkins/agencydash/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type LedgerSuite struct {
	suite.Suite
	loc    *time.Location
	clock  *fakeClock
	store  *MemoryStore
	ledger *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	loc, err := time.LoadLocation("America/New_York")
	s.Require().NoError(err)
	s.loc = loc
	s.clock = &fakeClock{now: time.Date(2026, 3, 10, 14, 30, 0, 0, loc)}
	s.store = NewMemoryStore()

	s.ledger, err = New(s.store, WithLocation(loc), WithClock(s.clock.Now))
	s.Require().NoError(err)
}

func (s *LedgerSuite) stored(userID string) model.UsageRecord {
	rec, err := s.store.Get(context.Background(), userID)
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	return *rec
}

func (s *LedgerSuite) TestNew() {
	s.Run("nil store", func() {
		_, err := New(nil)
		s.ErrorContains(err, "quota store is required")
	})

	s.Run("non-positive limit", func() {
		_, err := New(s.store, WithLimit(0))
		s.ErrorContains(err, "must be positive")
	})

	s.Run("defaults", func() {
		l, err := New(s.store)
		s.Require().NoError(err)
		s.Equal(DailyLimit, l.Limit())
	})
}

func (s *LedgerSuite) TestFirstRevealCreatesRecord() {
	ctx := context.Background()

	d, err := s.ledger.TryConsume(ctx, "u1")
	s.Require().NoError(err)
	s.True(d.Allowed)
	s.Equal(1, d.CurrentCount)
	s.Equal(DailyLimit-1, d.Remaining())

	rec := s.stored("u1")
	s.Equal(1, rec.Count)
	s.True(rec.LastViewedAt.Equal(s.clock.Now()))
}

func (s *LedgerSuite) TestIncrementsBelowLimit() {
	ctx := context.Background()

	for start := 0; start < DailyLimit; start += 7 {
		userID := fmt.Sprintf("below-%d", start)
		s.store.Set(model.UsageRecord{UserID: userID, Count: start, LastViewedAt: s.clock.Now().Add(-time.Hour)})

		d, err := s.ledger.TryConsume(ctx, userID)
		s.Require().NoError(err)
		s.True(d.Allowed, "count %d should be allowed", start)
		s.Equal(start+1, d.CurrentCount)
		s.Equal(start+1, s.stored(userID).Count)
	}
}

func (s *LedgerSuite) TestDeniesAtLimitWithoutMutation() {
	ctx := context.Background()
	earlier := s.clock.Now().Add(-2 * time.Hour)
	s.store.Set(model.UsageRecord{UserID: "full", Count: DailyLimit, LastViewedAt: earlier})

	d, err := s.ledger.TryConsume(ctx, "full")
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Equal(DailyLimit, d.CurrentCount)
	s.Equal(0, d.Remaining())

	rec := s.stored("full")
	s.Equal(DailyLimit, rec.Count)
	s.True(rec.LastViewedAt.Equal(earlier), "denied attempt must not touch lastViewedAt")
}

func (s *LedgerSuite) TestResetsOnNewDay() {
	ctx := context.Background()
	yesterday := s.clock.Now().AddDate(0, 0, -1)
	s.store.Set(model.UsageRecord{UserID: "returning", Count: DailyLimit, LastViewedAt: yesterday})

	d, err := s.ledger.TryConsume(ctx, "returning")
	s.Require().NoError(err)
	s.True(d.Allowed)
	s.Equal(1, d.CurrentCount)
	s.Equal(1, s.stored("returning").Count)
}

func (s *LedgerSuite) TestMidnightIsTheBoundary() {
	ctx := context.Background()
	s.clock.Set(time.Date(2026, 3, 10, 23, 59, 0, 0, s.loc))
	s.store.Set(model.UsageRecord{UserID: "owl", Count: DailyLimit - 1, LastViewedAt: s.clock.Now()})

	d, err := s.ledger.TryConsume(ctx, "owl")
	s.Require().NoError(err)
	s.True(d.Allowed)
	s.Equal(DailyLimit, d.CurrentCount)

	d, err = s.ledger.TryConsume(ctx, "owl")
	s.Require().NoError(err)
	s.False(d.Allowed)

	// Two minutes later is a new calendar day, well inside 24 hours
	s.clock.Set(time.Date(2026, 3, 11, 0, 1, 0, 0, s.loc))
	d, err = s.ledger.TryConsume(ctx, "owl")
	s.Require().NoError(err)
	s.True(d.Allowed)
	s.Equal(1, d.CurrentCount)
}

func (s *LedgerSuite) TestSameDayInUTCIsStillEvaluatedInReferenceZone() {
	ctx := context.Background()
	// 23:30 New York on the 10th is 03:30 UTC on the 11th
	s.clock.Set(time.Date(2026, 3, 11, 3, 30, 0, 0, time.UTC))
	s.store.Set(model.UsageRecord{
		UserID:       "zone",
		Count:        DailyLimit,
		LastViewedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, s.loc),
	})

	d, err := s.ledger.TryConsume(ctx, "zone")
	s.Require().NoError(err)
	s.False(d.Allowed, "still the 10th in the reference zone")
}

func (s *LedgerSuite) TestFiftyAllowedThenDenied() {
	ctx := context.Background()

	for i := 1; i <= DailyLimit; i++ {
		d, err := s.ledger.TryConsume(ctx, "fresh")
		s.Require().NoError(err)
		s.True(d.Allowed, "call %d", i)
		s.Equal(i, d.CurrentCount)
	}

	d, err := s.ledger.TryConsume(ctx, "fresh")
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Equal(DailyLimit, s.stored("fresh").Count)
}

func (s *LedgerSuite) TestUsage() {
	ctx := context.Background()

	s.Run("unknown user", func() {
		d, err := s.ledger.Usage(ctx, "nobody")
		s.Require().NoError(err)
		s.Equal(0, d.CurrentCount)
		s.True(d.Allowed)
		s.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, s.loc), d.ResetsAt)
	})

	s.Run("stale record reads as zero without writing", func() {
		yesterday := s.clock.Now().AddDate(0, 0, -1)
		s.store.Set(model.UsageRecord{UserID: "stale", Count: 12, LastViewedAt: yesterday})

		d, err := s.ledger.Usage(ctx, "stale")
		s.Require().NoError(err)
		s.Equal(0, d.CurrentCount)
		s.Equal(12, s.stored("stale").Count)
	})

	s.Run("today", func() {
		s.store.Set(model.UsageRecord{UserID: "today", Count: DailyLimit, LastViewedAt: s.clock.Now()})
		d, err := s.ledger.Usage(ctx, "today")
		s.Require().NoError(err)
		s.Equal(DailyLimit, d.CurrentCount)
		s.False(d.Allowed)
	})
}

type failingStore struct{}

func (failingStore) Update(context.Context, string, time.Time, UpdateFunc) (model.UsageRecord, error) {
	return model.UsageRecord{}, errors.New("connection refused")
}

func (failingStore) Get(context.Context, string) (*model.UsageRecord, error) {
	return nil, errors.New("connection refused")
}

func TestLedger_StoreFailureFailsClosed(t *testing.T) {
	ledger, err := New(failingStore{})
	require.NoError(t, err)

	d, err := ledger.TryConsume(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, d.Allowed)

	_, err = ledger.Usage(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestLedger_ConcurrentConsumeNeverOverruns(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewMemoryStore()
	ledger, err := New(store, WithLocation(time.UTC))
	require.NoError(t, err)

	const (
		initial    = 45
		goroutines = 40
	)
	remaining := DailyLimit - initial
	store.Set(model.UsageRecord{UserID: "racer", Count: initial, LastViewedAt: time.Now()})

	var wg sync.WaitGroup
	var allowed, denied atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := ledger.TryConsume(context.Background(), "racer")
			assert.NoError(t, err)
			if d.Allowed {
				allowed.Add(1)
			} else {
				denied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(remaining), allowed.Load())
	assert.Equal(t, int32(goroutines-remaining), denied.Load())

	rec, err := store.Get(context.Background(), "racer")
	require.NoError(t, err)
	assert.Equal(t, initial+remaining, rec.Count)
}
