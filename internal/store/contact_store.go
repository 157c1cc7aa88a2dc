package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/agencydash/internal/model"
)

// ContactStore handles database operations for contacts
type ContactStore struct {
	db *sql.DB
}

// NewContactStore creates a new ContactStore
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

// List retrieves one page of contacts ordered by last name, with the agency
// name resolved. Email and phone are not selected.
func (s *ContactStore) List(ctx context.Context, limit, offset int) ([]model.ContactListing, error) {
	query := `
		SELECT c.id, c.first_name, c.last_name, c.title, c.department, a.name
		FROM contacts c
		LEFT JOIN agencies a ON a.id = c.agency_id
		ORDER BY c.last_name ASC, c.id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.ContactListing
	for rows.Next() {
		var c model.ContactListing
		err := rows.Scan(
			&c.ID,
			&c.FirstName,
			&c.LastName,
			&c.Title,
			&c.Department,
			&c.AgencyName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}

// CountContacts returns the total number of contacts
func (s *ContactStore) CountContacts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

// GetPrivateFields retrieves only the email and phone of a contact
func (s *ContactStore) GetPrivateFields(ctx context.Context, id string) (*model.ContactPrivate, error) {
	var p model.ContactPrivate
	err := s.db.QueryRowContext(ctx, "SELECT email, phone FROM contacts WHERE id = $1", id).Scan(&p.Email, &p.Phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact %s: %w", id, err)
	}

	return &p, nil
}

// InsertContacts inserts a batch of contacts in one transaction. Rows whose
// ID already exists are left untouched. Returns the number inserted.
func (s *ContactStore) InsertContacts(ctx context.Context, contacts []model.Contact) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contacts (id, first_name, last_name, email, phone, title,
		                      department, created_at, agency_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare contact insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range contacts {
		res, err := stmt.ExecContext(ctx,
			c.ID,
			c.FirstName,
			c.LastName,
			c.Email,
			c.Phone,
			c.Title,
			c.Department,
			c.CreatedAt,
			c.AgencyID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert contact %s: %w", c.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to insert contact %s: %w", c.ID, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}
