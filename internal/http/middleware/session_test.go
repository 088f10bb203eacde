package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/wolfman30/insurance-leadform/internal/session"
)

func runSession(t *testing.T, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var seen string
	h := Session(SessionCookie{Name: "sid"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.IDFromContext(r.Context())
		if !ok {
			t.Fatalf("expected session id in context")
		}
		seen = id
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestSessionIssuesCookie(t *testing.T) {
	id, rec := runSession(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid session id, got %q", id)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" || cookies[0].Value != id || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
}

func TestSessionReusesValidCookie(t *testing.T) {
	existing := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: existing})

	id, _ := runSession(t, req)
	if id != existing {
		t.Fatalf("expected %s, got %s", existing, id)
	}
}

func TestSessionReplacesForgedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc/passwd"})

	id, _ := runSession(t, req)
	if id == "../../etc/passwd" {
		t.Fatalf("expected forged id to be replaced")
	}
}
