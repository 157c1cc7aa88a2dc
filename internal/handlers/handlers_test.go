package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jjenkins/agencydash/internal/auth"
	"github.com/jjenkins/agencydash/internal/model"
	"github.com/jjenkins/agencydash/internal/quota"
	"github.com/jjenkins/agencydash/internal/reveal"
	"github.com/jjenkins/agencydash/internal/service"
)

const (
	testSecret   = "handler-secret"
	testIssuer   = "agencydash"
	testAudience = "agencydash-web"
)

type fakeAgencies struct {
	rows  []model.Agency
	err   error
	calls struct{ limit, offset int }
}

func (f *fakeAgencies) List(_ context.Context, limit, offset int) ([]model.Agency, error) {
	f.calls.limit, f.calls.offset = limit, offset
	if offset >= len(f.rows) {
		return nil, f.err
	}
	return f.rows[offset:min(offset+limit, len(f.rows))], f.err
}

func (f *fakeAgencies) CountAgencies(context.Context) (int, error) {
	return len(f.rows), f.err
}

type fakeContacts struct {
	rows    []model.ContactListing
	private map[string]model.ContactPrivate
}

func (f *fakeContacts) List(_ context.Context, limit, offset int) ([]model.ContactListing, error) {
	if offset >= len(f.rows) {
		return nil, nil
	}
	return f.rows[offset:min(offset+limit, len(f.rows))], nil
}

func (f *fakeContacts) CountContacts(context.Context) (int, error) {
	return len(f.rows), nil
}

func (f *fakeContacts) GetPrivateFields(_ context.Context, id string) (*model.ContactPrivate, error) {
	p, ok := f.private[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type fakeDashboard struct{}

func (fakeDashboard) Dashboard(_ context.Context, userID string) (*service.DashboardMetrics, error) {
	return &service.DashboardMetrics{
		Directory: service.DirectoryMetrics{TotalAgencies: 1200, TotalContacts: 3},
		Usage:     quota.Decision{Allowed: true, CurrentCount: 2, Limit: 50},
	}, nil
}

type HandlersSuite struct {
	suite.Suite
	app      *fiber.App
	issuer   *auth.Issuer
	agencies *fakeAgencies
	contacts *fakeContacts
	ledger   *quota.Ledger
	store    *quota.MemoryStore
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	verifier := auth.NewVerifier(testSecret, testIssuer, testAudience)
	s.issuer = auth.NewIssuer(testSecret, testIssuer, testAudience, time.Hour)

	s.agencies = &fakeAgencies{}
	for i := 1; i <= 23; i++ {
		s.agencies.rows = append(s.agencies.rows, model.Agency{
			ID:         fmt.Sprintf("a-%02d", i),
			Name:       fmt.Sprintf("Agency %02d", i),
			Population: sql.NullInt64{Int64: int64(i) * 1000, Valid: true},
		})
	}
	s.contacts = &fakeContacts{
		rows: []model.ContactListing{{ID: "c-1", FirstName: "Ana", LastName: "Zamora"}},
		private: map[string]model.ContactPrivate{
			"c-1": {Email: "ana@example.gov", Phone: "555-0100"},
		},
	}

	s.store = quota.NewMemoryStore()
	var err error
	s.ledger, err = quota.New(s.store, quota.WithLimit(2), quota.WithLocation(time.UTC))
	s.Require().NoError(err)
	revealer := reveal.NewService(s.ledger, s.contacts)

	app := fiber.New()
	app.Get("/sign-in", SignInPageHandler(verifier))
	app.Post("/sign-in", SignInHandler(verifier, SessionOptions{TTL: time.Hour}))
	app.Post("/sign-out", SignOutHandler())
	app.Post("/contacts/:id/reveal", RevealHandler(revealer, verifier))

	requireUser := auth.RequireUser(verifier)
	app.Get("/", requireUser, HomeHandler(fakeDashboard{}))
	app.Get("/agencies", requireUser, AgenciesHandler(s.agencies))
	app.Get("/contacts", requireUser, ContactsHandler(s.contacts))
	app.Get("/usage", requireUser, UsageHandler(s.ledger))
	s.app = app
}

func (s *HandlersSuite) token(userID string) string {
	token, err := s.issuer.Issue(userID)
	s.Require().NoError(err)
	return token
}

func (s *HandlersSuite) do(req *http.Request, userID string) (*http.Response, string) {
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: s.token(userID)})
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, string(body)
}

func (s *HandlersSuite) get(path, userID string, htmx bool) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return s.do(req, userID)
}

func (s *HandlersSuite) reveal(contactID, field, userID string, htmx bool) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, "/contacts/"+contactID+"/reveal?field="+field, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return s.do(req, userID)
}

func (s *HandlersSuite) TestListingRequiresSignIn() {
	resp, _ := s.get("/agencies", "", false)
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/sign-in", resp.Header.Get("Location"))
}

func (s *HandlersSuite) TestHome() {
	resp, body := s.get("/", "user-1", false)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "1,200")
	s.Contains(body, "<strong>48</strong> remaining")
}

func (s *HandlersSuite) TestAgenciesPagination() {
	tests := []struct {
		query      string
		wantOffset int
		wantText   string
	}{
		{"", 0, "Showing page 1 of 3"},
		{"?page=2", 10, "Showing page 2 of 3"},
		{"?page=0", 0, "Showing page 1 of 3"},
		{"?page=-4", 0, "Showing page 1 of 3"},
		{"?page=abc", 0, "Showing page 1 of 3"},
		{"?page=3", 20, "Agency 23"},
	}
	for _, tt := range tests {
		s.Run(tt.query, func() {
			resp, body := s.get("/agencies"+tt.query, "user-1", false)
			s.Equal(http.StatusOK, resp.StatusCode)
			s.Equal(PageSize, s.agencies.calls.limit)
			s.Equal(tt.wantOffset, s.agencies.calls.offset)
			s.Contains(body, tt.wantText)
			s.Contains(body, "<!DOCTYPE html>")
		})
	}
}

func (s *HandlersSuite) TestAgenciesHTMXFragment() {
	resp, body := s.get("/agencies?page=2", "user-1", true)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.True(strings.HasPrefix(body, `<div id="agencies-table">`))
	s.Contains(body, "11,000")
	s.NotContains(body, "<!DOCTYPE html>")
}

func (s *HandlersSuite) TestAgenciesStoreError() {
	s.agencies.err = errors.New("db down")
	resp, _ := s.get("/agencies", "user-1", false)
	s.Equal(http.StatusInternalServerError, resp.StatusCode)
}

func (s *HandlersSuite) TestContacts() {
	resp, body := s.get("/contacts", "user-1", false)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Ana Zamora")
	s.Contains(body, "N/A")
	s.NotContains(body, "ana@example.gov", "private fields are never listed")
}

func (s *HandlersSuite) TestRevealJSON() {
	resp, body := s.reveal("c-1", "email", "user-1", false)
	s.Equal(http.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			Email string `json:"email"`
			Phone string `json:"phone"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal([]byte(body), &payload))
	s.True(payload.Success)
	s.Equal("ana@example.gov", payload.Data.Email)
	s.Equal("555-0100", payload.Data.Phone)
}

func (s *HandlersSuite) TestRevealUnauthorized() {
	resp, body := s.reveal("c-1", "email", "", false)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.JSONEq(`{"error":"Unauthorized"}`, body)

	rec, err := s.store.Get(context.Background(), "")
	s.Require().NoError(err)
	s.Nil(rec)
}

func (s *HandlersSuite) TestRevealNotFoundConsumesQuota() {
	resp, body := s.reveal("nope", "email", "user-1", false)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.JSONEq(`{"error":"Contact not found"}`, body)

	d, err := s.ledger.Usage(context.Background(), "user-1")
	s.Require().NoError(err)
	s.Equal(1, d.CurrentCount)
}

func (s *HandlersSuite) TestRevealLimit() {
	s.reveal("c-1", "email", "user-1", false)
	s.reveal("c-1", "phone", "user-1", false)

	resp, body := s.reveal("c-1", "email", "user-1", false)
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.JSONEq(`{"error":"Daily limit reached","limitReached":true}`, body)

	resp, body = s.reveal("c-1", "email", "user-1", true)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Limit Reached")
	s.Contains(body, "You have viewed 2 contacts today.")
}

func (s *HandlersSuite) TestRevealHTMX() {
	_, body := s.reveal("c-1", "phone", "user-1", true)
	s.Equal(`<div class="reveal revealed" data-field="phone">555-0100</div>`, body)

	resp, body := s.reveal("c-1", "email", "", true)
	s.Equal("/sign-in", resp.Header.Get("HX-Redirect"))
	s.Contains(body, "Unauthorized")
}

func (s *HandlersSuite) TestRevealBadField() {
	resp, _ := s.reveal("c-1", "ssn", "user-1", false)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	d, err := s.ledger.Usage(context.Background(), "user-1")
	s.Require().NoError(err)
	s.Equal(0, d.CurrentCount)
}

func (s *HandlersSuite) TestUsage() {
	s.reveal("c-1", "email", "user-1", false)

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	req.Header.Set("Accept", "application/json")
	resp, body := s.do(req, "user-1")
	s.Equal(http.StatusOK, resp.StatusCode)

	var payload map[string]any
	s.Require().NoError(json.Unmarshal([]byte(body), &payload))
	s.Equal(float64(1), payload["count"])
	s.Equal(float64(2), payload["limit"])
	s.Equal(float64(1), payload["remaining"])
	s.Equal("UTC", payload["timezone"])

	_, body = s.get("/usage", "user-1", false)
	s.Contains(body, "<strong>1</strong> of 2")
}

func (s *HandlersSuite) TestSignInFlow() {
	_, body := s.get("/sign-in", "", false)
	s.Contains(body, `name="token"`)

	form := url.Values{"token": {"garbage"}}
	req := httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, body := s.do(req, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Contains(body, "Invalid or expired token")

	form = url.Values{"token": {s.token("user-9")}}
	req = httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ = s.do(req, "")
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/", resp.Header.Get("Location"))

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookie {
			session = c
		}
	}
	s.Require().NotNil(session)
	s.True(session.HttpOnly)
	s.Equal(http.SameSiteLaxMode, session.SameSite)

	resp, _ = s.do(httptest.NewRequest(http.MethodPost, "/sign-out", nil), "user-9")
	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/sign-in", resp.Header.Get("Location"))
}

func TestParsePageHelpers(t *testing.T) {
	assert.Equal(t, 0, totalPages(0))
	assert.Equal(t, 1, totalPages(10))
	assert.Equal(t, 2, totalPages(11))
	assert.Equal(t, 20, offset(3))
	require.Equal(t, 10, PageSize)
}
