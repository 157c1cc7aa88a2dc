package templates

import (
	"database/sql"

	"github.com/dustin/go-humanize"
)

// FormatNumber renders n with comma thousands separators
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// Population renders an agency population, "-" when unknown
func Population(p sql.NullInt64) string {
	if !p.Valid {
		return "-"
	}
	return FormatNumber(p.Int64)
}

// AgencyName renders a contact's agency, "N/A" when the contact has none
func AgencyName(name sql.NullString) string {
	if !name.Valid || name.String == "" {
		return "N/A"
	}
	return name.String
}
