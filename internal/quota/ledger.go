// Package quota enforces the per-user daily limit on contact reveals.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jjenkins/agencydash/internal/model"
)

// DailyLimit is the default number of reveals allowed per user per day
const DailyLimit = 50

// Decision is the outcome of a quota check
type Decision struct {
	Allowed      bool
	CurrentCount int
	Limit        int
	ResetsAt     time.Time
}

// Remaining returns how many reveals are left today
func (d Decision) Remaining() int {
	if d.CurrentCount >= d.Limit {
		return 0
	}
	return d.Limit - d.CurrentCount
}

// Ledger tracks daily reveal counts per user
type Ledger struct {
	store  Store
	limit  int
	loc    *time.Location
	now    func() time.Time
	logger *log.Entry
}

// Option configures a Ledger
type Option func(*Ledger)

// WithLimit overrides DailyLimit
func WithLimit(limit int) Option {
	return func(l *Ledger) {
		l.limit = limit
	}
}

// WithLocation sets the reference zone used for day boundaries
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		l.loc = loc
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Entry) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates a Ledger backed by store
func New(store Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("quota store is required")
	}

	l := &Ledger{
		store:  store,
		limit:  DailyLimit,
		loc:    time.Local,
		now:    time.Now,
		logger: log.WithField("component", "quota"),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.limit <= 0 {
		return nil, fmt.Errorf("quota limit must be positive, got %d", l.limit)
	}
	if l.loc == nil {
		return nil, errors.New("quota location is required")
	}

	return l, nil
}

// Limit returns the configured daily limit
func (l *Ledger) Limit() int {
	return l.limit
}

// Location returns the reference zone for day boundaries
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// TryConsume takes one reveal from the user's daily quota if any is left.
// The count resets when the stored day precedes today. A denied attempt
// leaves the record untouched apart from that reset.
func (l *Ledger) TryConsume(ctx context.Context, userID string) (Decision, error) {
	now := l.now().In(l.loc)
	decision := Decision{Limit: l.limit, ResetsAt: NextReset(now, l.loc)}

	_, err := l.store.Update(ctx, userID, now, func(rec *model.UsageRecord) bool {
		changed := false
		if beforeToday(rec.LastViewedAt, now, l.loc) {
			rec.Count = 0
			rec.LastViewedAt = now
			changed = true
		}

		if rec.Count >= l.limit {
			decision.Allowed = false
			decision.CurrentCount = rec.Count
			return changed
		}

		rec.Count++
		rec.LastViewedAt = now
		decision.Allowed = true
		decision.CurrentCount = rec.Count
		return true
	})
	if err != nil {
		l.logger.WithError(err).WithField("user_id", userID).Error("quota update failed")
		return Decision{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if !decision.Allowed {
		l.logger.WithFields(log.Fields{
			"user_id": userID,
			"count":   decision.CurrentCount,
		}).Info("daily reveal limit reached")
	}

	return decision, nil
}

// Usage reports the user's standing for today without consuming quota
func (l *Ledger) Usage(ctx context.Context, userID string) (Decision, error) {
	now := l.now().In(l.loc)
	decision := Decision{Limit: l.limit, ResetsAt: NextReset(now, l.loc)}

	rec, err := l.store.Get(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if rec != nil && !beforeToday(rec.LastViewedAt, now, l.loc) {
		decision.CurrentCount = rec.Count
	}
	decision.Allowed = decision.CurrentCount < l.limit

	return decision, nil
}
