// internal/words/words.go
//
// Provides the dictionary the game engine draws its candidate words from.
//
// Responsibilities:
//   - Load the word list from an environment-provided file or fall back to the
//     embedded default (assets/dictionary.txt).
//   - Normalize entries: trimmed, lowercased, letters only, no duplicates.
//   - Answer the lookups the HTTP layer needs: words of a length, the lengths
//     on offer, counts, a random playable length.
//
// Environment variables:
//   WORDS_FILE=/path/to/dictionary.txt
//
// Init is run once (sync.Once) and fills Default().

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/assets"
)

// Dictionary is an immutable, normalized word list indexed by length.
type Dictionary struct {
	words    []string         // sorted, unique
	byLength map[int][]string // word length → words, sorted
	lengths  []int            // sorted keys of byLength
}

var (
	initOnce   sync.Once
	defaultDic *Dictionary
	initialErr error
)

// Init loads the default dictionary exactly once.
// Returns an error if the source cannot be read or yields no words.
func Init() error {
	initOnce.Do(func() {
		var (
			rc  io.ReadCloser
			err error
		)
		path := os.Getenv("WORDS_FILE")
		src := path
		if path != "" {
			rc, err = os.Open(path)
		} else {
			rc, err = assets.Dictionary()
			src = "embedded"
		}
		if err != nil {
			initialErr = fmt.Errorf("words: open dictionary: %w", err)
			return
		}
		defer rc.Close()

		list, err := Load(rc)
		if err != nil {
			initialErr = fmt.Errorf("words: read dictionary: %w", err)
			return
		}
		if len(list) == 0 {
			initialErr = errors.New("words: dictionary is empty")
			return
		}
		defaultDic = New(list)
		log.Info().Str("source", src).Int("words", len(list)).Ints("lengths", defaultDic.lengths).Msg("dictionary loaded")
	})
	return initialErr
}

// Default returns the dictionary loaded by Init, or nil before a successful Init.
func Default() *Dictionary {
	return defaultDic
}

// Load reads one word per line from r. Blank lines and lines starting with
// "#" are skipped; words are lowercased and dropped unless every rune is a
// letter. The result is sorted and free of duplicates.
func Load(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		w := strings.ToLower(s)
		if isWord(w) {
			out = append(out, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// New indexes list. The input is copied, sorted and deduplicated but not
// otherwise normalized; use Load for raw text.
func New(list []string) *Dictionary {
	ws := slices.Clone(list)
	slices.Sort(ws)
	ws = slices.Compact(ws)

	d := &Dictionary{words: ws, byLength: make(map[int][]string)}
	for _, w := range ws {
		n := utf8.RuneCountInString(w)
		d.byLength[n] = append(d.byLength[n], w)
	}
	d.lengths = make([]int, 0, len(d.byLength))
	for n := range d.byLength {
		d.lengths = append(d.lengths, n)
	}
	slices.Sort(d.lengths)
	return d
}

// isWord reports whether s is non-empty and made of letters only.
func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// All returns a copy of every word.
func (d *Dictionary) All() []string {
	return slices.Clone(d.words)
}

// OfLength returns a copy of the words with n letters, never nil.
func (d *Dictionary) OfLength(n int) []string {
	return append([]string{}, d.byLength[n]...)
}

// Lengths returns the distinct word lengths present, ascending.
func (d *Dictionary) Lengths() []int {
	return slices.Clone(d.lengths)
}

// CountByLength reports how many words have n letters.
func (d *Dictionary) CountByLength(n int) int {
	return len(d.byLength[n])
}

// Stats returns a length → count table.
func (d *Dictionary) Stats() map[int]int {
	out := make(map[int]int, len(d.byLength))
	for k, v := range d.byLength {
		out[k] = len(v)
	}
	return out
}

// RandomLength picks one of Lengths uniformly. Returns 0 for an empty dictionary.
func (d *Dictionary) RandomLength() int {
	if len(d.lengths) == 0 {
		return 0
	}
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(d.lengths))))
	return d.lengths[nBig.Int64()]
}
