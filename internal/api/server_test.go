package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrSnug/seedtracker/internal/roster"
	"github.com/MrSnug/seedtracker/internal/store"
	"github.com/MrSnug/seedtracker/internal/tracker"
)

func testEngine(t *testing.T) *tracker.Tracker {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := tracker.Config{
		IntervalMinutes: 15,
		SeedStart:       5,
		SeedEnd:         40,
		ListMode:        tracker.ModeBlacklist,
		PlayerList:      []string{"afk1"},
		MaxListSize:     10,
		LookbackDays:    30,
		PurgeDays:       45,
		LeaderboardSize: 10,
		Alerts: tracker.AlertConfig{
			CriticalThreshold: 2,
			LowThreshold:      5,
			Cooldown:          30 * time.Minute,
		},
	}
	return tracker.New(st, roster.Static(nil), nil, cfg)
}

func testRouter(t *testing.T, opts ...ServerOption) http.Handler {
	t.Helper()
	return NewServer("127.0.0.1:0", testEngine(t), opts...).router()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet, "/api/v1/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatus(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet, "/api/v1/status", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status tracker.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if !status.Initialized || status.Started {
		t.Errorf("unexpected status: %+v", status)
	}
	if status.SeedStart != 5 || status.SeedEnd != 40 {
		t.Errorf("unexpected seeding band: %+v", status)
	}
}

func TestLeaderboard_Empty(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet, "/api/v1/leaderboard", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestListRoutes(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/list", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Entries []string `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Entries) != 1 || body.Entries[0] != "afk1" {
		t.Errorf("unexpected entries: %v", body.Entries)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/list/NewGuy", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Adding the same uid again is a validation failure, not a server error.
	rec = doRequest(t, router, http.MethodPost, "/api/v1/list/newguy", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate add: expected 422, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/list/newguy", "")
	if rec.Code != http.StatusOK {
		t.Errorf("remove: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/list/ghost", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("remove missing: expected 422, got %d", rec.Code)
	}
}

func TestUpdateAlerts(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/alerts", `{"enabled":true,"cooldown_min":60}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/alerts", "")
	var status tracker.AlertStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if !status.Enabled || status.Cooldown != 60*time.Minute {
		t.Errorf("unexpected alert status: %+v", status)
	}
}

func TestUpdateAlerts_Invalid(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/alerts", `{"critical":-1}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPut, "/api/v1/alerts", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestUninitializedEngine_Returns503(t *testing.T) {
	engine := tracker.New(nil, roster.Static(nil), nil, tracker.Config{})
	router := NewServer("127.0.0.1:0", engine).router()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/leaderboard", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/analytics", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	// Health stays up regardless.
	rec = doRequest(t, router, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for health, got %d", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	router := testRouter(t, WithBasicAuth("admin", "secret"))

	// No credentials: rejected.
	rec := doRequest(t, router, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}

	// Wrong credentials: rejected.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.SetBasicAuth("admin", "wrong")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong password, got %d", rr.Code)
	}

	// Correct credentials: accepted.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.SetBasicAuth("admin", "secret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 with credentials, got %d", rr.Code)
	}

	// Health is reachable without credentials.
	rec = doRequest(t, router, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for health, got %d", rec.Code)
	}
}

func TestShutdown(t *testing.T) {
	srv := NewServer("127.0.0.1:0", testEngine(t))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("shutdown of an unstarted server should be clean, got %v", err)
	}
}
