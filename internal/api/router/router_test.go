package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wolfman30/insurance-leadform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/insurance-leadform/internal/http/middleware"
	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/internal/persistence"
	"github.com/wolfman30/insurance-leadform/internal/session"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

type acceptAll struct{}

func (acceptAll) Store(context.Context, leads.Record) persistence.Result {
	return persistence.Result{Outcome: persistence.OutcomeRemote}
}

type remoteUp struct{}

func (remoteUp) Connected() bool { return true }

func newTestRouter(t *testing.T, perSecond float64, burst int) http.Handler {
	t.Helper()

	logger := logging.Discard()
	lifecycle := session.NewLifecycle(session.LifecycleConfig{Store: acceptAll{}, Logger: logger})
	manager := session.NewManager(lifecycle, session.NewMemoryStore(time.Hour), nil, logger)
	t.Cleanup(manager.Close)

	return New(&Config{
		Logger:             logger,
		LeadForm:           handlers.NewLeadFormHandler(handlers.LeadFormConfig{Sessions: manager, Logger: logger}),
		Remote:             remoteUp{},
		MetricsHandler:     http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		RateLimitPerSecond: perSecond,
		RateLimitBurst:     burst,
		SessionCookie:      httpmiddleware.SessionCookie{Name: "sid"},
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, 0, 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatalf("health checks should not start sessions")
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, 0, 0)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterLeadSubmissionKeepsSession(t *testing.T) {
	router := newTestRouter(t, 0, 0)

	payload := leads.FormInput{
		FirstName:     "Jane",
		LastName:      "Smith",
		Email:         "jane@example.com",
		Phone:         "555-123-4567",
		State:         "Texas",
		InsuranceType: "Annuities",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	status := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	status.AddCookie(cookies[0])
	sr := httptest.NewRecorder()
	router.ServeHTTP(sr, status)

	var resp struct {
		Phase       string `json:"phase"`
		Submissions int    `json:"submissions"`
	}
	if err := json.NewDecoder(sr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Phase != "success" || resp.Submissions != 1 {
		t.Fatalf("expected success with one submission, got %+v", resp)
	}
}

func TestRouterRateLimitsSubmissions(t *testing.T) {
	router := newTestRouter(t, 0.001, 1)

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader([]byte(`{}`)))
		req.RemoteAddr = "192.0.2.1:1234"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusUnprocessableEntity || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected 422 then 429, got %v", codes)
	}
}

func TestRouterFormPageIsNotRateLimited(t *testing.T) {
	router := newTestRouter(t, 0.001, 1)

	for i := range 3 {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
}
