package model

import (
	"database/sql"
)

// Agency represents a government agency in the directory
type Agency struct {
	ID         string
	Name       string
	State      string
	Type       string
	Population sql.NullInt64
	Website    sql.NullString
}

// AgencyRow is a raw agency record read from the seed CSV
type AgencyRow struct {
	ID         string
	Name       string
	State      string
	Type       string
	Population string
	Website    string
}
