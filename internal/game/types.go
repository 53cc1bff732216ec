// internal/game/types.go
//
// Core type definitions for the adversarial hangman engine.
// Defines:
//   - Game: state for a single game (candidate words, guesses, pattern, budget).
//   - ErrInvalidArgument / ErrInvalidState: the two error kinds surfaced to callers.

package game

import (
	"errors"
	"time"
)

// Placeholder marks an unrevealed slot in a pattern.
const Placeholder = '-'

var (
	// ErrInvalidArgument is returned for bad constructor parameters, a missing
	// dictionary, or a letter that has already been guessed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when the operation makes no sense at the
	// current stage: no candidates left, or the guess budget is spent.
	ErrInvalidState = errors.New("invalid state")
)

// Game holds the state of a single hangman game.
//
// The game never commits to a secret word. It keeps the set of dictionary
// words still consistent with every guess and, after each guess, narrows it to
// the largest group sharing one reveal pattern.
//
// A Game is not safe for concurrent use; callers serialize access.
type Game struct {
	ID        string    // Unique game identifier (uuid).
	CreatedAt time.Time // Construction time (UTC).
	Owner     string    // Player the session layer started the game for; unused by the engine.

	length      int               // number of letters per word
	maxGuesses  int               // initial guess budget
	guessesLeft int               // remaining wrong guesses allowed
	words       []string          // candidate set, sorted, no duplicates
	guessed     map[rune]struct{} // letters guessed so far
	pattern     string            // current reveal pattern, e.g. "- o o -"
}
