package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/agencydash/internal/model"
)

// AgencyStore handles database operations for agencies
type AgencyStore struct {
	db *sql.DB
}

// NewAgencyStore creates a new AgencyStore
func NewAgencyStore(db *sql.DB) *AgencyStore {
	return &AgencyStore{db: db}
}

// GetByID retrieves an agency by its ID
func (s *AgencyStore) GetByID(ctx context.Context, id string) (*model.Agency, error) {
	query := `
		SELECT id, name, state, type, population, website
		FROM agencies
		WHERE id = $1
	`

	var a model.Agency
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID,
		&a.Name,
		&a.State,
		&a.Type,
		&a.Population,
		&a.Website,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agency %s: %w", id, err)
	}

	return &a, nil
}

// List retrieves one page of agencies ordered by name
func (s *AgencyStore) List(ctx context.Context, limit, offset int) ([]model.Agency, error) {
	query := `
		SELECT id, name, state, type, population, website
		FROM agencies
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list agencies: %w", err)
	}
	defer rows.Close()

	var agencies []model.Agency
	for rows.Next() {
		var a model.Agency
		err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.State,
			&a.Type,
			&a.Population,
			&a.Website,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agency: %w", err)
		}
		agencies = append(agencies, a)
	}

	return agencies, rows.Err()
}

// CountAgencies returns the total number of agencies
func (s *AgencyStore) CountAgencies(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM agencies").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count agencies: %w", err)
	}
	return count, nil
}

// InsertAgency inserts an agency, leaving an existing row with the same ID
// untouched. Returns whether a row was inserted.
func (s *AgencyStore) InsertAgency(ctx context.Context, a *model.Agency) (bool, error) {
	query := `
		INSERT INTO agencies (id, name, state, type, population, website)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.Name,
		a.State,
		a.Type,
		a.Population,
		a.Website,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert agency %s: %w", a.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert agency %s: %w", a.ID, err)
	}

	return n > 0, nil
}
