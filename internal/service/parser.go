package service

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jjenkins/agencydash/internal/model"
)

// createdAtLayouts are the timestamp formats accepted in the contacts CSV
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parser reads seed CSV files. The first row is a header; columns are matched
// by name so their order does not matter.
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseAgencies reads agency rows
func (p *Parser) ParseAgencies(r io.Reader) ([]model.AgencyRow, error) {
	var rows []model.AgencyRow
	err := p.each(r, func(get func(string) string) {
		rows = append(rows, model.AgencyRow{
			ID:         get("id"),
			Name:       get("name"),
			State:      get("state"),
			Type:       get("type"),
			Population: get("population"),
			Website:    get("website"),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse agencies: %w", err)
	}
	return rows, nil
}

// ParseContacts reads contact rows
func (p *Parser) ParseContacts(r io.Reader) ([]model.ContactRow, error) {
	var rows []model.ContactRow
	err := p.each(r, func(get func(string) string) {
		rows = append(rows, model.ContactRow{
			ID:         get("id"),
			FirstName:  get("first_name"),
			LastName:   get("last_name"),
			Email:      get("email"),
			Phone:      get("phone"),
			Title:      get("title"),
			Department: get("department"),
			CreatedAt:  get("created_at"),
			AgencyID:   get("agency_id"),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse contacts: %w", err)
	}
	return rows, nil
}

// each calls fn once per data row with a lookup for trimmed column values
func (p *Parser) each(r io.Reader, fn func(get func(string) string)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if isBlank(record) {
			continue
		}

		fn(func(col string) string {
			i, ok := columns[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		})
	}
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParsePopulation strips thousands separators and parses the count. Empty or
// non-numeric values are NULL.
func ParsePopulation(s string) sql.NullInt64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return sql.NullInt64{}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

// ParseCreatedAt parses a contact timestamp, falling back to now when the
// value is empty or unrecognized.
func ParseCreatedAt(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

// nullString maps an empty value to NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
