package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jjenkins/agencydash/internal/quota"
)

// UsageReader reports a user's quota standing without consuming it
type UsageReader interface {
	Usage(ctx context.Context, userID string) (quota.Decision, error)
	Location() *time.Location
}

// RevealCounter totals reveals across all users
type RevealCounter interface {
	RevealsSince(ctx context.Context, since time.Time) (int, error)
}

// MetricsService calculates the dashboard figures
type MetricsService struct {
	db      *sql.DB
	usage   UsageReader
	reveals RevealCounter
}

// NewMetricsService creates a new MetricsService. reveals may be nil when the
// quota backend cannot total usage across users.
func NewMetricsService(db *sql.DB, usage UsageReader, reveals RevealCounter) *MetricsService {
	return &MetricsService{db: db, usage: usage, reveals: reveals}
}

// DirectoryMetrics are counts over the whole directory
type DirectoryMetrics struct {
	TotalAgencies    int
	TotalContacts    int
	UnlinkedContacts int
	StatesCovered    int
	RevealsToday     sql.NullInt64
}

// DashboardMetrics is what the dashboard shows a signed-in user
type DashboardMetrics struct {
	Directory DirectoryMetrics
	Usage     quota.Decision
}

// Dashboard returns directory totals and the user's quota standing
func (m *MetricsService) Dashboard(ctx context.Context, userID string) (*DashboardMetrics, error) {
	result := &DashboardMetrics{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dir, err := m.Directory(gctx)
		if err != nil {
			return err
		}
		result.Directory = *dir
		return nil
	})
	g.Go(func() error {
		usage, err := m.usage.Usage(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get usage: %w", err)
		}
		result.Usage = usage
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// Directory calculates directory-wide counts
func (m *MetricsService) Directory(ctx context.Context) (*DirectoryMetrics, error) {
	metrics := &DirectoryMetrics{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM agencies) AS total_agencies,
			(SELECT COUNT(*) FROM contacts) AS total_contacts,
			(SELECT COUNT(*) FROM contacts WHERE agency_id IS NULL) AS unlinked_contacts,
			(SELECT COUNT(DISTINCT state) FROM agencies WHERE state <> '') AS states_covered
	`
	err := m.db.QueryRowContext(ctx, query).Scan(
		&metrics.TotalAgencies,
		&metrics.TotalContacts,
		&metrics.UnlinkedContacts,
		&metrics.StatesCovered,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate directory metrics: %w", err)
	}

	if m.reveals != nil {
		since := quota.StartOfDay(time.Now(), m.usage.Location())
		total, err := m.reveals.RevealsSince(ctx, since)
		if err != nil {
			return nil, fmt.Errorf("failed to count reveals: %w", err)
		}
		metrics.RevealsToday = sql.NullInt64{Int64: int64(total), Valid: true}
	}

	return metrics, nil
}
