package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// CurrentUser is placed into the request context by the middleware.
type CurrentUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxUserKey struct{}

// UserFrom returns the authenticated user, or nil for guests.
func UserFrom(ctx context.Context) *CurrentUser {
	u, _ := ctx.Value(ctxUserKey{}).(*CurrentUser)
	return u
}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u *CurrentUser) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

// Optional decorates requests with the user if a valid token is present.
// It never rejects; guests pass through.
func (s *Service) Optional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := s.TokenFromRequest(r); tok != "" {
				if id, _, err := s.Parse(tok); err == nil {
					if u, err := s.FindUserByID(r.Context(), id); err == nil {
						r = r.WithContext(WithUser(r.Context(), &CurrentUser{ID: u.ID, Username: u.Username}))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a valid token for a user that still exists.
func (s *Service) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := s.TokenFromRequest(r)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			id, username, err := s.Parse(tokenStr)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			// Ensure user still exists
			if _, err := s.FindUserByID(r.Context(), id); err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := WithUser(r.Context(), &CurrentUser{ID: id, Username: username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError sends {"error": msg} as JSON.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

const anonCookieName = "hangman_anon"

// EnsureAnonID returns the anonymous player cookie, setting a new one if missing.
// Used to tie guest games to a stable identifier.
func (s *Service) EnsureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: s.sameSite(),
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// AnonID returns the anonymous cookie carried by r, or "" without setting one.
// A player who signed up keeps it, so games started as a guest stay theirs.
func AnonID(r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil {
		return c.Value
	}
	return ""
}

// PlayerID is the user ID when logged in, otherwise the anonymous ID.
func (s *Service) PlayerID(w http.ResponseWriter, r *http.Request) (id string, anonymous bool) {
	if me := UserFrom(r.Context()); me != nil {
		return me.ID, false
	}
	return s.EnsureAnonID(w, r), true
}
