package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fourLetter = []string{"ally", "cool", "good", "wood"}

func mustNew(t *testing.T, dict []string, length, max int) *Game {
	t.Helper()
	g, err := New(dict, length, max)
	require.NoError(t, err)
	return g
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		dict    []string
		length  int
		max     int
		wantErr error
	}{
		{name: "ok", dict: fourLetter, length: 4, max: 10},
		{name: "large budget", dict: fourLetter, length: 4, max: 9999},
		{name: "zero budget", dict: fourLetter, length: 2, max: 0},
		{name: "empty dictionary", dict: []string{}, length: 4, max: 7},
		{name: "no word of length", dict: fourLetter, length: 9, max: 7},
		{name: "zero length", dict: fourLetter, length: 0, max: 0, wantErr: ErrInvalidArgument},
		{name: "negative length", dict: fourLetter, length: -7, max: 7, wantErr: ErrInvalidArgument},
		{name: "negative budget", dict: fourLetter, length: 7, max: -7, wantErr: ErrInvalidArgument},
		{name: "nil dictionary", dict: nil, length: 7, max: 7, wantErr: ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.dict, tt.length, tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.max, g.GuessesLeft())
			assert.Equal(t, tt.length, g.Length())
			assert.Empty(t, g.Guessed())
			assert.NotEmpty(t, g.ID)
		})
	}
}

func TestNewFiltersAndDeduplicates(t *testing.T) {
	g := mustNew(t, []string{"wood", "a", "wood", "cool", "longer"}, 4, 3)
	assert.Equal(t, []string{"cool", "wood"}, g.Words())

	p, err := g.Pattern()
	require.NoError(t, err)
	assert.Equal(t, "- - - -", p)
}

func TestNewCountsCodePoints(t *testing.T) {
	g := mustNew(t, []string{"größe", "grosse", "gross"}, 5, 3)
	assert.Equal(t, []string{"gross", "größe"}, g.Words())

	n, err := g.Guess('ö')
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{"gross"}, g.Words())
}

func TestWordsIsACopy(t *testing.T) {
	dict := []string{"ally", "cool"}
	g := mustNew(t, dict, 4, 7)

	a := g.Words()
	b := g.Words()
	assert.Equal(t, a, b)

	a[0] = "zzzz"
	dict[1] = "yyyy"
	assert.Equal(t, []string{"ally", "cool"}, g.Words())
	assert.Equal(t, []string{"ally", "cool"}, b)
}

func TestGuessedIsSortedCopy(t *testing.T) {
	g := mustNew(t, []string{"wwww"}, 4, 7)
	for _, r := range "hdgef" {
		_, err := g.Guess(r)
		require.NoError(t, err)
	}
	got := g.Guessed()
	assert.Equal(t, []rune("defgh"), got)

	got[0] = 'z'
	assert.Equal(t, []rune("defgh"), g.Guessed())
}

func TestGuessesLeftDecrementsOnMiss(t *testing.T) {
	g := mustNew(t, []string{"wwww"}, 4, 7)
	assert.Equal(t, 7, g.GuessesLeft())

	for i, r := range "def" {
		n, err := g.Guess(r)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, 6-i, g.GuessesLeft())
	}
	assert.Equal(t, 3, g.Misses())
}

func TestGuessHitKeepsBudget(t *testing.T) {
	g := mustNew(t, []string{"wwww"}, 4, 2)
	n, err := g.Guess('w')
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 2, g.GuessesLeft())
	assert.True(t, g.Solved())

	p, err := g.Pattern()
	require.NoError(t, err)
	assert.Equal(t, "w w w w", p)
}

func TestPatternScenario(t *testing.T) {
	g := mustNew(t, fourLetter, 4, 7)

	p, err := g.Pattern()
	require.NoError(t, err)
	assert.Equal(t, "- - - -", p)

	n, err := g.Guess('e')
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 6, g.GuessesLeft())
	p, _ = g.Pattern()
	assert.Equal(t, "- - - -", p)
	assert.Equal(t, fourLetter, g.Words())

	n, err = g.Guess('o')
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 6, g.GuessesLeft())
	p, _ = g.Pattern()
	assert.Equal(t, "- o o -", p)
	assert.Equal(t, []string{"cool", "good", "wood"}, g.Words())
	assert.False(t, g.Solved())
}

func TestPatternWithoutCandidates(t *testing.T) {
	g := mustNew(t, []string{}, 4, 7)
	_, err := g.Pattern()
	assert.ErrorIs(t, err, ErrInvalidState)

	g = mustNew(t, fourLetter, 5, 7)
	_, err = g.Pattern()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, g.Solved())
}

func TestGuessErrors(t *testing.T) {
	g := mustNew(t, []string{"wwww"}, 4, 2)

	n, err := g.Guess('c')
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, g.GuessesLeft())

	_, err = g.Guess('c')
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 1, g.GuessesLeft())

	n, err = g.Guess('d')
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, g.GuessesLeft())

	_, err = g.Guess('e')
	assert.ErrorIs(t, err, ErrInvalidState)
	// budget is checked before duplicates
	_, err = g.Guess('d')
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, []rune("cd"), g.Guessed())
}

func TestGuessWithoutCandidates(t *testing.T) {
	g := mustNew(t, []string{}, 4, 7)
	_, err := g.Guess('a')
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 7, g.GuessesLeft())
	assert.Empty(t, g.Guessed())
}

func TestRepeatedGuessLeavesStateUntouched(t *testing.T) {
	g := mustNew(t, fourLetter, 4, 7)
	_, err := g.Guess('o')
	require.NoError(t, err)

	left := g.GuessesLeft()
	pattern, _ := g.Pattern()
	words := g.Words()

	_, err = g.Guess('o')
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, left, g.GuessesLeft())
	p, _ := g.Pattern()
	assert.Equal(t, pattern, p)
	assert.Equal(t, words, g.Words())
}

func TestCandidatesNeverGrow(t *testing.T) {
	dict := []string{
		"able", "acid", "aged", "also", "area", "army", "away", "baby", "back", "ball",
		"band", "bank", "base", "bath", "bear", "beat", "been", "beer", "bell", "belt",
		"best", "bill", "bird", "blow", "blue", "boat", "body", "bomb", "bond", "bone",
		"book", "boom", "born", "boss", "both", "bowl", "bulk", "burn", "bush", "busy",
	}
	g := mustNew(t, dict, 4, 26)
	prev := g.CandidateCount()
	for _, r := range "etaoinshrdlcumwfgypbvkjxqz" {
		if g.GuessesLeft() == 0 || g.Solved() {
			break
		}
		_, err := g.Guess(r)
		require.NoError(t, err)
		assert.LessOrEqual(t, g.CandidateCount(), prev)
		assert.Positive(t, g.CandidateCount())
		prev = g.CandidateCount()

		// every surviving word matches the pattern
		p, err := g.Pattern()
		require.NoError(t, err)
		guessed := make(map[rune]struct{})
		for _, c := range g.Guessed() {
			guessed[c] = struct{}{}
		}
		for _, w := range g.Words() {
			assert.Equal(t, p, PatternOf(w, guessed))
		}
	}
}

func TestGamesDoNotShareState(t *testing.T) {
	dict := []string{"ally", "cool", "good", "wood"}
	a := mustNew(t, dict, 4, 7)
	b := mustNew(t, dict, 4, 7)
	assert.NotEqual(t, a.ID, b.ID)

	_, err := a.Guess('o')
	require.NoError(t, err)
	assert.Len(t, b.Words(), 4)
	assert.Empty(t, b.Guessed())
}
