package quota

import (
	"context"
	"errors"
	"time"

	"github.com/jjenkins/agencydash/internal/model"
)

// ErrStoreUnavailable is returned when the ledger cannot read or write usage
// records. Callers must deny the reveal.
var ErrStoreUnavailable = errors.New("quota store unavailable")

// UpdateFunc mutates a usage record in place and reports whether it changed.
// It may run more than once for a single Update when a backend retries.
type UpdateFunc = func(rec *model.UsageRecord) bool

// Store persists one usage record per user.
type Store interface {
	// Update runs fn against the user's record while no other Update for the
	// same user can interleave. A missing record is created with Count 0 and
	// LastViewedAt now before fn runs. The record is written back only when it
	// was created or fn reports a change. The returned record is the final state.
	Update(ctx context.Context, userID string, now time.Time, fn UpdateFunc) (model.UsageRecord, error)

	// Get returns the user's record, or nil if the user never revealed a contact.
	Get(ctx context.Context, userID string) (*model.UsageRecord, error)
}
