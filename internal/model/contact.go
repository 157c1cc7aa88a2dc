package model

import (
	"database/sql"
	"time"
)

// Contact represents a person working at an agency
type Contact struct {
	ID         string
	FirstName  string
	LastName   string
	Title      string
	Department string
	Email      string
	Phone      string
	CreatedAt  time.Time
	AgencyID   sql.NullString
}

// ContactListing is a contact as shown in the directory, without private
// fields and with the agency name resolved
type ContactListing struct {
	ID         string
	FirstName  string
	LastName   string
	Title      string
	Department string
	AgencyName sql.NullString
}

// FullName returns the contact's display name
func (c ContactListing) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ContactPrivate holds the fields disclosed by a reveal
type ContactPrivate struct {
	Email string
	Phone string
}

// ContactRow is a raw contact record read from the seed CSV
type ContactRow struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Title      string
	Department string
	CreatedAt  string
	AgencyID   string
}
