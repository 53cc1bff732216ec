// internal/game/engine.go
//
// Game engine for a single adversarial hangman session.
// Responsibilities:
//   - Create games from a dictionary, a word length and a guess budget.
//   - Validate and apply guesses (budget, candidates, repeated letters).
//   - Narrow the candidate set after every guess (see partition.go).
//   - Expose read-only snapshots; accessors never hand out live state.
//
// Notes:
//   - Ending the game is left to the caller: it is over when GuessesLeft()
//     hits zero or the pattern has no placeholder (Solved).
//   - Every rejected call leaves the game exactly as it was.
package game

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// New constructs a game over the words in dictionary that have exactly length
// letters. Duplicate words collapse. An empty result is allowed, but Pattern
// and Guess will then fail with ErrInvalidState.
//
// Fails with ErrInvalidArgument when length < 1, maxGuesses < 0 or dictionary is nil.
func New(dictionary []string, length, maxGuesses int) (*Game, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: length must be at least 1, got %d", ErrInvalidArgument, length)
	}
	if maxGuesses < 0 {
		return nil, fmt.Errorf("%w: max guesses must not be negative, got %d", ErrInvalidArgument, maxGuesses)
	}
	if dictionary == nil {
		return nil, fmt.Errorf("%w: dictionary is nil", ErrInvalidArgument)
	}

	words := make([]string, 0, len(dictionary))
	for _, w := range dictionary {
		if utf8.RuneCountInString(w) == length {
			words = append(words, w)
		}
	}
	slices.Sort(words)
	words = slices.Compact(words)

	return &Game{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		length:      length,
		maxGuesses:  maxGuesses,
		guessesLeft: maxGuesses,
		words:       words,
		guessed:     make(map[rune]struct{}),
		pattern:     blankPattern(length),
	}, nil
}

// Words returns a sorted copy of the candidate set.
func (g *Game) Words() []string {
	return slices.Clone(g.words)
}

// CandidateCount is len(Words()) without the copy.
func (g *Game) CandidateCount() int { return len(g.words) }

// GuessesLeft reports the remaining guess budget.
func (g *Game) GuessesLeft() int { return g.guessesLeft }

// MaxGuesses reports the budget the game started with.
func (g *Game) MaxGuesses() int { return g.maxGuesses }

// Misses is the number of guesses that revealed nothing.
func (g *Game) Misses() int { return g.maxGuesses - g.guessesLeft }

// Length is the word length this game was built for.
func (g *Game) Length() int { return g.length }

// Guessed returns the guessed letters in sorted order.
func (g *Game) Guessed() []rune {
	out := make([]rune, 0, len(g.guessed))
	for r := range g.guessed {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Pattern returns the current reveal pattern, one space-separated token per
// letter with Placeholder for unrevealed positions.
func (g *Game) Pattern() (string, error) {
	if len(g.words) == 0 {
		return "", fmt.Errorf("%w: no candidate words", ErrInvalidState)
	}
	return g.pattern, nil
}

// Solved reports whether every position has been revealed.
func (g *Game) Solved() bool {
	return len(g.words) > 0 && !strings.ContainsRune(g.pattern, Placeholder)
}

// Guess records letter and returns how many times it appears in the new
// pattern. A guess that reveals nothing costs one from the budget.
//
// Fails with ErrInvalidState when the budget is spent or no candidates remain,
// and with ErrInvalidArgument when letter was already guessed.
func (g *Game) Guess(letter rune) (int, error) {
	if g.guessesLeft < 1 {
		return 0, fmt.Errorf("%w: no guesses left", ErrInvalidState)
	}
	if len(g.words) == 0 {
		return 0, fmt.Errorf("%w: no candidate words", ErrInvalidState)
	}
	if _, dup := g.guessed[letter]; dup {
		return 0, fmt.Errorf("%w: %q already guessed", ErrInvalidArgument, letter)
	}

	g.guessed[letter] = struct{}{}
	pattern, words := choose(Partition(g.words, g.guessed))
	g.pattern, g.words = pattern, words

	n := countRune(words[0], letter)
	if n == 0 {
		g.guessesLeft--
	}
	return n, nil
}

// blankPattern renders n placeholders separated by single spaces.
func blankPattern(n int) string {
	var b strings.Builder
	b.Grow(2*n - 1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(Placeholder)
	}
	return b.String()
}

// countRune counts occurrences of r in word.
func countRune(word string, r rune) int {
	n := 0
	for _, c := range word {
		if c == r {
			n++
		}
	}
	return n
}
