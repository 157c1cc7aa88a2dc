package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/agencydash/internal/model"
)

func TestParseAgencies(t *testing.T) {
	input := "id,name,state,type,population,website\n" +
		"a-1,  City of Austin ,TX,City,\"961,855\",https://austintexas.gov\n" +
		"\n" +
		"a-2,Water Board,CA,District,,\n"

	rows, err := NewParser().ParseAgencies(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, model.AgencyRow{
		ID:         "a-1",
		Name:       "City of Austin",
		State:      "TX",
		Type:       "City",
		Population: "961,855",
		Website:    "https://austintexas.gov",
	}, rows[0])
	assert.Empty(t, rows[1].Population)
	assert.Empty(t, rows[1].Website)
}

func TestParseContacts_ColumnOrderAndMissingColumns(t *testing.T) {
	input := "\ufefflast_name,first_name,id,email,agency_id\n" +
		"Zamora,Ana,c-1,ana@example.gov,a-1\n" +
		"Abbott,Ben,c-2\n"

	rows, err := NewParser().ParseContacts(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "c-1", rows[0].ID)
	assert.Equal(t, "Ana", rows[0].FirstName)
	assert.Equal(t, "a-1", rows[0].AgencyID)
	assert.Empty(t, rows[0].Phone)
	assert.Empty(t, rows[1].Email)
}

func TestParse_EmptyInput(t *testing.T) {
	rows, err := NewParser().ParseAgencies(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParse_MalformedQuote(t *testing.T) {
	_, err := NewParser().ParseContacts(strings.NewReader("id,first_name\nc-1,\"Ana\n"))
	assert.Error(t, err)
}

func TestParsePopulation(t *testing.T) {
	tests := []struct {
		in    string
		want  int64
		valid bool
	}{
		{"1,234,567", 1234567, true},
		{" 42 ", 42, true},
		{"", 0, false},
		{"unknown", 0, false},
		{"12.5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParsePopulation(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.want, got.Int64)
		})
	}
}

func TestParseCreatedAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2024-06-15T10:30:00Z", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"postgres export", "2024-06-15 10:30:00.123456+00", time.Date(2024, 6, 15, 10, 30, 0, 123456000, time.UTC)},
		{"plain timestamp", "2024-06-15 10:30:00", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"date only", "2024-06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"empty", "", now},
		{"garbage", "last tuesday", now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseCreatedAt(tt.in, now)), "got %v", ParseCreatedAt(tt.in, now))
		})
	}
}
