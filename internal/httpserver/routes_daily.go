// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's game (creates or reuses session)
//   - POST /daily/guess       → submit a letter for today's game
//   - GET  /daily/leaderboard → winners for today (or a given date)
//
// Everyone gets the same word length on a given day (date + salt).
// Each player can finish the challenge once per day (DB + in-memory session).
// Sessions and their games from earlier days are dropped when a new day's
// game is requested.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/daily"
	"github.com/robalobadob/hangman/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	sessions map[string]*dailySession // keyed by playerID|date
	mu       sync.Mutex               // guards sessions and their fields
	now      func() time.Time
}

// dailySession holds transient state for an in-progress daily game.
type dailySession struct {
	GameID   string
	PlayerID string
	Date     string
	Length   int
	Start    time.Time
	Finished bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		sessions: make(map[string]*dailySession),
		now:      time.Now,
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// today returns today's date key and word length.
func (d *dailyServer) today() (date string, length int) {
	now := d.now().UTC()
	return daily.DateKey(now), daily.LengthFor(now, d.srv.cfg.DailySalt, d.srv.dict.Lengths())
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID      string `json:"gameId"`
	Date        string `json:"date"`
	Played      bool   `json:"played"`
	Length      int    `json:"length,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	GuessesLeft int    `json:"guessesLeft,omitempty"`
}

// handleNew creates or reuses today's session.
//   - Result already in the DB → Played=true, no game.
//   - Otherwise reuse the live session or start a new game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	pid := d.srv.playerOf(w, r).ID
	date, length := d.today()
	if length == 0 {
		writeError(w, http.StatusServiceUnavailable, "no_words")
		return
	}

	if played, err := d.store.AlreadyPlayed(r.Context(), pid, date); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("daily already played")
	} else if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := pid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune(r.Context(), date)

	if sess, ok := d.sessions[key]; ok {
		if v, err := d.view(r, sess.GameID); err == nil {
			writeJSON(w, http.StatusOK, dailyNewRes{
				GameID: sess.GameID, Date: date, Played: sess.Finished,
				Length: v.Length, Pattern: v.Pattern, GuessesLeft: v.GuessesLeft,
			})
			return
		}
	}

	g, err := game.New(d.srv.dict.OfLength(length), length, d.srv.cfg.DailyMaxGuesses)
	if err != nil {
		writeGameError(w, err)
		return
	}
	g.Owner = pid
	if err := d.srv.store.Save(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[key] = &dailySession{
		GameID:   g.ID,
		PlayerID: pid,
		Date:     date,
		Length:   length,
		Start:    d.now(),
	}
	pattern, _ := g.Pattern()
	writeJSON(w, http.StatusOK, dailyNewRes{
		GameID: g.ID, Date: date, Length: length, Pattern: pattern, GuessesLeft: g.GuessesLeft(),
	})
}

// prune drops sessions, and their live games, that are not for date.
// Caller holds d.mu.
func (d *dailyServer) prune(ctx context.Context, date string) {
	for key, sess := range d.sessions {
		if sess.Date == date {
			continue
		}
		delete(d.sessions, key)
		if err := d.srv.store.Delete(ctx, sess.GameID); err != nil {
			log.Warn().Err(err).Str("gameId", sess.GameID).Msg("drop stale daily game")
		}
	}
}

// view snapshots a live game.
func (d *dailyServer) view(r *http.Request, id string) (gameView, error) {
	var v gameView
	err := d.srv.store.Update(r.Context(), id, func(g *game.Game) error {
		v = viewOf(g)
		return nil
	})
	return v, err
}

// -----------------------------------------------------------------------------
// /daily/guess

type dailyGuessRes struct {
	guessRes
	Locked bool `json:"locked,omitempty"` // already finished today
}

// handleGuess applies a letter to today's session; the result is stored once
// the game is won or lost.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	p := d.srv.playerOf(w, r)
	pid := p.ID

	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	letter, ok := parseLetter(req.Letter)
	if req.GameID == "" || !ok {
		writeError(w, http.StatusBadRequest, "invalid")
		return
	}

	date, _ := d.today()
	key := pid + "|" + date
	d.mu.Lock()
	sess, ok := d.sessions[key]
	d.mu.Unlock()
	if !ok || sess.GameID != req.GameID {
		writeError(w, http.StatusConflict, "no_session")
		return
	}

	d.mu.Lock()
	finished := sess.Finished
	d.mu.Unlock()
	if finished {
		v, err := d.view(r, sess.GameID)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dailyGuessRes{guessRes: guessRes{gameView: v}, Locked: true})
		return
	}

	res, err := d.srv.applyGuess(r.Context(), sess.GameID, letter, p)
	if err != nil {
		writeGameError(w, err)
		return
	}

	if res.finished() {
		d.mu.Lock()
		first := !sess.Finished
		sess.Finished = true
		d.mu.Unlock()
		if first {
			elapsed := int(d.now().Sub(sess.Start).Milliseconds())
			err := d.store.InsertResult(r.Context(), daily.Result{
				UserID:     pid,
				Date:       date,
				WordLength: res.Length,
				Won:        res.State == stateWon,
				Guesses:    len(res.Guessed),
				Misses:     res.MaxGuesses - res.GuessesLeft,
				ElapsedMs:  elapsed,
			})
			if err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("insert daily result")
			}
		}
	}
	writeJSON(w, http.StatusOK, dailyGuessRes{guessRes: res})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the winners for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = d.today()
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
