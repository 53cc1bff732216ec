// internal/httpserver/server.go
//
// HTTP server wiring for the hangman backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//   - Best-effort history rows and user stats in the database.
//
// Notes:
//   - Live games sit in the store; every mutation goes through Store.Update so
//     one game is never touched by two requests at once.
//   - The engine does not decide when a game ends. This layer does: won when
//     the pattern has no placeholder, lost when the budget is spent. Guesses
//     on a finished game are refused with 409.
//   - A game belongs to the player who started it; other callers get 404.
//   - Games leave the store FinishedRetention after they end, or GameTTL
//     after they start if abandoned.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/telemetry"
	"github.com/robalobadob/hangman/internal/words"
)

// Config carries the tunables the handlers need.
type Config struct {
	MaxGuesses      int    // default budget for /game/new
	DailyMaxGuesses int    // budget for the daily challenge
	DailySalt       string // HMAC key for the daily word length
	ClientOrigin    string // CORS origin

	GameTTL           time.Duration // live games are dropped this long after start
	FinishedRetention time.Duration // finished games stay readable this long
}

// Server bundles router, live game store, dictionary and DB handle.
type Server struct {
	r      *chi.Mux
	store  store.Store
	db     *sql.DB
	auth   *auth.Service
	dict   *words.Dictionary
	cfg    Config
	tracer trace.Tracer
	daily  *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, au *auth.Service, dict *words.Dictionary, cfg Config) *Server {
	if cfg.MaxGuesses <= 0 {
		cfg.MaxGuesses = 7
	}
	if cfg.DailyMaxGuesses <= 0 {
		cfg.DailyMaxGuesses = 6
	}
	if cfg.ClientOrigin == "" {
		cfg.ClientOrigin = "http://localhost:5173"
	}
	if cfg.GameTTL <= 0 {
		cfg.GameTTL = 24 * time.Hour
	}
	if cfg.FinishedRetention <= 0 {
		cfg.FinishedRetention = 10 * time.Minute
	}
	s := &Server{
		r:      chi.NewRouter(),
		store:  st,
		db:     db,
		auth:   au,
		dict:   dict,
		cfg:    cfg,
		tracer: telemetry.Tracer("httpserver"),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(telemetry.Middleware)            // server span per request
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped zerolog logger
	s.r.Use(accessLog)                       // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"hangman-go","endpoints":["/health","POST /game/new","POST /game/guess","GET /game/{id}","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"lengths": s.dict.Stats()})
	})

	// Game endpoints: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.auth.Optional())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Get("/game/{id}", s.handleGetGame)
	})

	// Daily Challenge: OPTIONAL AUTH
	s.mountDaily(s.r.With(s.auth.Optional()))

	// Auth + profile/stats
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	lvl := zerolog.DebugLevel
	if status >= 500 {
		lvl = zerolog.WarnLevel
	}
	hlog.FromRequest(r).WithLevel(lvl).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("requestId", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("request")
})

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeGameError maps engine and store errors onto HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

// ------------------------------ GAME ---------------------------------------

// player is the caller as far as game ownership goes: the ID history rows are
// recorded under, plus the guest cookie a signed-up player still carries.
type player struct {
	ID        string
	Anonymous bool
	anonID    string
}

func (s *Server) playerOf(w http.ResponseWriter, r *http.Request) player {
	id, anon := s.auth.PlayerID(w, r)
	return player{ID: id, Anonymous: anon, anonID: auth.AnonID(r)}
}

func (p player) owns(g *game.Game) bool {
	return g.Owner == p.ID || (p.anonID != "" && g.Owner == p.anonID)
}

// expire drops a game from the live store after d.
func (s *Server) expire(id string, d time.Duration) {
	time.AfterFunc(d, func() {
		if err := s.store.Delete(context.Background(), id); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("expire game")
		}
	})
}

// Game states reported to clients.
const (
	statePlaying = "playing"
	stateWon     = "won"
	stateLost    = "lost"
)

// gameView is the client-facing snapshot of a game.
type gameView struct {
	GameID      string   `json:"gameId"`
	Length      int      `json:"length"`
	Pattern     string   `json:"pattern"`
	GuessesLeft int      `json:"guessesLeft"`
	MaxGuesses  int      `json:"maxGuesses"`
	Guessed     []string `json:"guessed"`
	Candidates  int      `json:"candidates"`
	State       string   `json:"state"`          // "playing" | "won" | "lost"
	Word        string   `json:"word,omitempty"` // revealed once the game is over
}

// viewOf snapshots g. Caller must hold exclusive access (Store.Update).
func viewOf(g *game.Game) gameView {
	v := gameView{
		GameID:      g.ID,
		Length:      g.Length(),
		GuessesLeft: g.GuessesLeft(),
		MaxGuesses:  g.MaxGuesses(),
		Guessed:     []string{},
		Candidates:  g.CandidateCount(),
		State:       statePlaying,
	}
	v.Pattern, _ = g.Pattern()
	for _, r := range g.Guessed() {
		v.Guessed = append(v.Guessed, string(r))
	}
	switch {
	case g.Solved():
		v.State = stateWon
	case g.GuessesLeft() == 0 || g.CandidateCount() == 0:
		v.State = stateLost
	}
	if v.State != statePlaying && g.CandidateCount() > 0 {
		v.Word = g.Words()[0]
	}
	return v
}

func (v gameView) finished() bool { return v.State != statePlaying }

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Length     int  `json:"length"`     // 0 → random length with words
	MaxGuesses *int `json:"maxGuesses"` // nil → server default
}

// handleNewGame creates a game and records an owner row for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	length := req.Length
	if length == 0 {
		length = s.dict.RandomLength()
	}
	maxGuesses := s.cfg.MaxGuesses
	if req.MaxGuesses != nil {
		maxGuesses = *req.MaxGuesses
	}

	g, err := game.New(s.dict.OfLength(length), length, maxGuesses)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if g.CandidateCount() == 0 {
		writeError(w, http.StatusBadRequest, "no_words_of_length")
		return
	}
	p := s.playerOf(w, r)
	g.Owner = p.ID
	if err := s.store.Save(r.Context(), g); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.expire(g.ID, s.cfg.GameTTL)

	s.recordStart(r.Context(), g, p)
	hlog.FromRequest(r).Info().Str("gameId", g.ID).Int("length", length).Int("candidates", g.CandidateCount()).Msg("game started")

	writeJSON(w, http.StatusOK, viewOf(g))
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Letter string `json:"letter"`
}
type guessRes struct {
	gameView
	Count int `json:"count"` // occurrences of the letter in the new pattern
}

// handleGuess applies a guess, persists progress, and on finish updates user stats.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	letter, ok := parseLetter(req.Letter)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_letter")
		return
	}
	p := s.playerOf(w, r)
	res, err := s.applyGuess(r.Context(), req.GameID, letter, p)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.recordGuess(r.Context(), res, p)
	if res.finished() {
		s.expire(res.GameID, s.cfg.FinishedRetention)
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGetGame returns the current snapshot of a game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	p := s.playerOf(w, r)
	var v gameView
	err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(g *game.Game) error {
		if !p.owns(g) {
			return store.ErrNotFound
		}
		v = viewOf(g)
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// applyGuess runs one guess under the store lock inside a trace span.
// Games owned by someone else look missing; finished games refuse guesses.
func (s *Server) applyGuess(ctx context.Context, gameID string, letter rune, p player) (guessRes, error) {
	ctx, span := s.tracer.Start(ctx, "game.guess")
	defer span.End()
	span.SetAttributes(attribute.String("game.id", gameID), attribute.String("game.letter", string(letter)))

	var res guessRes
	err := s.store.Update(ctx, gameID, func(g *game.Game) error {
		if !p.owns(g) {
			return store.ErrNotFound
		}
		if g.Solved() {
			return fmt.Errorf("%w: game is already won", game.ErrInvalidState)
		}
		before := g.CandidateCount()
		n, err := g.Guess(letter)
		if err != nil {
			return err
		}
		res = guessRes{gameView: viewOf(g), Count: n}
		span.SetAttributes(
			attribute.Int("game.length", g.Length()),
			attribute.Int("game.candidates_before", before),
			attribute.Int("game.candidates_after", g.CandidateCount()),
			attribute.Int("game.count", n),
			attribute.String("game.state", res.State),
		)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return guessRes{}, err
	}
	return res, nil
}

// parseLetter accepts exactly one letter (any script), lowercased.
func parseLetter(s string) (rune, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, unicode.IsLetter(r)
}

// ------------------------------ history ------------------------------------

// recordStart inserts the games row (best effort).
func (s *Server) recordStart(ctx context.Context, g *game.Game, p player) {
	col := "user_id"
	if p.Anonymous {
		col = "anonymous_id"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO games (id, `+col+`, word_length, max_guesses, started_at, status)
	                                 VALUES (?,?,?,?,?,?)`,
		g.ID, p.ID, g.Length(), g.MaxGuesses(), g.CreatedAt.Format(time.RFC3339), statePlaying)
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
}

// recordGuess bumps counters and, when the game is over, closes the row and
// updates the owner's stats. Failures are logged, never surfaced.
func (s *Server) recordGuess(ctx context.Context, res guessRes, p player) {
	ownerClause := `user_id=?`
	if p.Anonymous {
		ownerClause = `anonymous_id=?`
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	misses := res.MaxGuesses - res.GuessesLeft
	if _, err := tx.ExecContext(ctx, `UPDATE games SET guesses = guesses + 1, misses = ? WHERE id=? AND status=? AND `+ownerClause,
		misses, res.GameID, statePlaying, p.ID); err != nil {
		log.Warn().Err(err).Msg("update guesses")
	}

	if res.finished() {
		result, err := tx.ExecContext(ctx, `UPDATE games SET status=?, finished_at=?, word=? WHERE id=? AND status=? AND `+ownerClause,
			res.State, time.Now().UTC().Format(time.RFC3339), res.Word, res.GameID, statePlaying, p.ID)
		if err != nil {
			log.Warn().Err(err).Msg("finish game")
		}
		// stats only when this call actually closed an owned row
		if n, _ := rowsAffected(result); n == 1 {
			if !p.Anonymous {
				if err := auth.BumpStats(ctx, tx, p.ID, res.State == stateWon); err != nil {
					log.Warn().Err(err).Str("user", p.ID).Msg("bump stats")
				}
			}
			log.Info().Str("gameId", res.GameID).Str("state", res.State).Int("misses", misses).Msg("game finished")
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit game row")
	}
}

func rowsAffected(r sql.Result) (int64, error) {
	if r == nil {
		return 0, nil
	}
	return r.RowsAffected()
}

// claimAnonGames transfers anonymous games to a user account after auth.
func (s *Server) claimAnonGames(ctx context.Context, anonID, userID string) {
	if anonID == "" || userID == "" {
		return
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID); err != nil {
		log.Warn().Err(err).Msg("claim anon games")
	}
}
