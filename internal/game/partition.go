// internal/game/partition.go
//
// The adversary: group candidate words by the pattern they would reveal and
// keep the biggest group.

package game

import "strings"

// PatternOf renders word as it would appear under guessed: guessed letters
// stay in place, every other letter becomes Placeholder, tokens are joined
// by single spaces.
func PatternOf(word string, guessed map[rune]struct{}) string {
	var b strings.Builder
	b.Grow(2 * len(word))
	first := true
	for _, r := range word {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		if _, ok := guessed[r]; ok {
			b.WriteRune(r)
		} else {
			b.WriteRune(Placeholder)
		}
	}
	return b.String()
}

// Partition groups words by PatternOf under guessed. Words keep their
// relative order inside each group. It does not modify its inputs.
func Partition(words []string, guessed map[rune]struct{}) map[string][]string {
	groups := make(map[string][]string)
	for _, w := range words {
		p := PatternOf(w, guessed)
		groups[p] = append(groups[p], w)
	}
	return groups
}

// choose picks the group with the most words. Equal sizes go to the
// lexicographically smallest pattern so the outcome never depends on map
// iteration order. groups must not be empty.
func choose(groups map[string][]string) (string, []string) {
	var (
		best  string
		words []string
	)
	for p, ws := range groups {
		switch {
		case words == nil, len(ws) > len(words):
			best, words = p, ws
		case len(ws) == len(words) && p < best:
			best, words = p, ws
		}
	}
	return best, words
}
