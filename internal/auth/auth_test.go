package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/database"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	cfg := ConfigFromEnv(func(string) string { return "" })
	return NewService(db, cfg)
}

func TestConfigFromEnv(t *testing.T) {
	env := map[string]string{"JWT_SECRET": "s3cret", "JWT_EXPIRES_DAYS": "3", "NODE_ENV": "production"}
	c := ConfigFromEnv(func(k string) string { return env[k] })
	assert.Equal(t, Config{Secret: "s3cret", ExpiresDays: 3, CookieName: "hangman_token", Secure: true}, c)

	c = ConfigFromEnv(func(string) string { return "" })
	assert.Equal(t, "dev_secret_change_me", c.Secret)
	assert.Equal(t, 14, c.ExpiresDays)
	assert.False(t, c.Secure)
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		user, pw string
		ok       bool
	}{
		{"alice", "password1", true},
		{"al", "password1", false},
		{"alice!", "password1", false},
		{"alice", "short", false},
	}
	for _, tt := range tests {
		err := ValidateSignup(tt.user, tt.pw)
		assert.Equal(t, tt.ok, err == nil, "%s/%s", tt.user, tt.pw)
	}
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	u, err := s.CreateUser(ctx, "  alice ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = s.CreateUser(ctx, "ALICE", "password2")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := s.Authenticate(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, "alice", "wrong-password")
	assert.Error(t, err)
	_, err = s.Authenticate(ctx, "bob", "password1")
	assert.Error(t, err)
}

func TestBumpStats(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	u, err := s.CreateUser(ctx, "alice", "password1")
	require.NoError(t, err)

	for _, won := range []bool{true, true, false, true} {
		tx, err := s.db.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, BumpStats(ctx, tx, u.ID, won))
		require.NoError(t, tx.Commit())
	}
	got, err := s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.GamesPlayed)
	assert.Equal(t, 3, got.Wins)
	assert.Equal(t, 1, got.Streak)
}

func TestSignAndParse(t *testing.T) {
	s := newService(t)
	tok, exp, err := s.Sign("id-1", "alice")
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	id, name, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	assert.Equal(t, "alice", name)

	_, _, err = s.Parse(tok + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewService(s.db, Config{Secret: "other", ExpiresDays: 1, CookieName: "c"})
	_, _, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	u, err := s.CreateUser(ctx, "alice", "password1")
	require.NoError(t, err)
	tok, _, err := s.Sign(u.ID, u.Username)
	require.NoError(t, err)

	var seen *CurrentUser
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFrom(r.Context())
	})

	tests := []struct {
		name     string
		mw       func(http.Handler) http.Handler
		header   string
		wantCode int
		wantUser bool
	}{
		{"optional guest", s.Optional(), "", http.StatusOK, false},
		{"optional bearer", s.Optional(), "Bearer " + tok, http.StatusOK, true},
		{"optional bad token", s.Optional(), "Bearer nope", http.StatusOK, false},
		{"require missing", s.Require(), "", http.StatusUnauthorized, false},
		{"require bad token", s.Require(), "Bearer nope", http.StatusUnauthorized, false},
		{"require ok", s.Require(), "Bearer " + tok, http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			tt.mw(h).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
			if rec.Code == http.StatusUnauthorized {
				assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body["error"])
			}
			if tt.wantUser {
				require.NotNil(t, seen)
				assert.Equal(t, u.ID, seen.ID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestTokenFromCookie(t *testing.T) {
	s := newService(t)
	rec := httptest.NewRecorder()
	s.SetCookie(rec, "abc", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	assert.Equal(t, "abc", s.TokenFromRequest(req))
}

func TestEnsureAnonID(t *testing.T) {
	s := newService(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	id := s.EnsureAnonID(rec, req)
	assert.NotEmpty(t, id)

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		again.AddCookie(c)
	}
	assert.Equal(t, id, s.EnsureAnonID(httptest.NewRecorder(), again))

	assert.Equal(t, id, AnonID(again))
	assert.Empty(t, AnonID(req))

	pid, anon := s.PlayerID(httptest.NewRecorder(), again)
	assert.Equal(t, id, pid)
	assert.True(t, anon)
}
