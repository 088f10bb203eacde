package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/insurance-leadform/internal/session"
)

// SessionCookie options.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Session assigns every visitor a random session id cookie and stores it in
// the request context. Unparseable ids are replaced rather than trusted.
func Session(cfg SessionCookie) func(http.Handler) http.Handler {
	if cfg.Name == "" {
		cfg.Name = "leadform_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cfg.Name); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
			}
			cookie := &http.Cookie{
				Name:     cfg.Name,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			}
			if cfg.MaxAge > 0 {
				cookie.MaxAge = int(cfg.MaxAge.Seconds())
			}
			http.SetCookie(w, cookie)
			next.ServeHTTP(w, r.WithContext(session.WithID(r.Context(), id)))
		})
	}
}
