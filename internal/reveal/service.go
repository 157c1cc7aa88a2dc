// Package reveal implements the quota-gated action that discloses a
// contact's email and phone.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jjenkins/agencydash/internal/model"
	"github.com/jjenkins/agencydash/internal/quota"
)

// Status is the outcome category of a reveal
type Status string

const (
	StatusSuccess      Status = "success"
	StatusUnauthorized Status = "unauthorized"
	StatusLimitReached Status = "limit_reached"
	StatusNotFound     Status = "not_found"
	StatusUnavailable  Status = "unavailable"
	StatusFailed       Status = "failed"
)

// Result is what a reveal returns to its caller. Email and Phone are only set
// on success.
type Result struct {
	Status    Status
	Email     string
	Phone     string
	Count     int
	Limit     int
	Remaining int
}

// Message returns the user-facing text for the result
func (r Result) Message() string {
	switch r.Status {
	case StatusSuccess:
		return ""
	case StatusUnauthorized:
		return "Unauthorized"
	case StatusLimitReached:
		return "Daily limit reached"
	case StatusNotFound:
		return "Contact not found"
	case StatusUnavailable:
		return "Service unavailable, please try again"
	default:
		return "Failed to reveal"
	}
}

// Ledger consumes daily reveal quota
type Ledger interface {
	TryConsume(ctx context.Context, userID string) (quota.Decision, error)
}

// ContactLookup fetches a contact's private fields, returning nil when the
// contact does not exist.
type ContactLookup interface {
	GetPrivateFields(ctx context.Context, id string) (*model.ContactPrivate, error)
}

// Service performs reveals
type Service struct {
	ledger   Ledger
	contacts ContactLookup
	metrics  *Metrics
	logger   *log.Entry
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records outcomes on m
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new Service
func NewService(ledger Ledger, contacts ContactLookup, opts ...Option) *Service {
	s := &Service{
		ledger:   ledger,
		contacts: contacts,
		logger:   log.WithField("component", "reveal"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reveal consumes one unit of the user's daily quota and returns the
// contact's private fields. The quota is taken before the contact is looked
// up, so a reveal of an unknown id still counts against the user. An empty
// userID is rejected without touching the ledger or the contact store.
func (s *Service) Reveal(ctx context.Context, contactID, userID string) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(log.Fields{
				"contact_id": contactID,
				"user_id":    userID,
				"panic":      fmt.Sprint(r),
			}).Error("reveal panicked")
			res = Result{Status: StatusFailed}
		}
		s.metrics.observe(res.Status, time.Since(start))
	}()

	if userID == "" {
		return Result{Status: StatusUnauthorized}
	}

	decision, err := s.ledger.TryConsume(ctx, userID)
	if err != nil {
		status := StatusFailed
		if errors.Is(err, quota.ErrStoreUnavailable) {
			status = StatusUnavailable
		}
		s.logger.WithError(err).WithField("user_id", userID).Warn("quota check failed")
		return Result{Status: status}
	}

	res = Result{
		Count:     decision.CurrentCount,
		Limit:     decision.Limit,
		Remaining: decision.Remaining(),
	}
	if !decision.Allowed {
		res.Status = StatusLimitReached
		return res
	}

	contact, err := s.contacts.GetPrivateFields(ctx, contactID)
	if err != nil {
		s.logger.WithError(err).WithField("contact_id", contactID).Error("contact lookup failed")
		res.Status = StatusFailed
		return res
	}
	if contact == nil {
		res.Status = StatusNotFound
		return res
	}

	res.Status = StatusSuccess
	res.Email = contact.Email
	res.Phone = contact.Phone
	return res
}
