// Command hangman plays adversarial hangman in the terminal.
//
//	hangman [-words dictionary.txt] [-length 5] [-guesses 7] [-debug]
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/assets"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/words"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	wordsFile := flag.String("words", os.Getenv("WORDS_FILE"), "dictionary file, one word per line (default: embedded)")
	length := flag.Int("length", 0, "word length (0 asks)")
	guesses := flag.Int("guesses", 0, "wrong guesses allowed (0 asks)")
	debug := flag.Bool("debug", false, "show how many words are still possible")
	flag.Parse()

	dict, err := loadDictionary(*wordsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", *wordsFile).Msg("load dictionary")
	}

	in := bufio.NewScanner(os.Stdin)
	out := os.Stdout
	fmt.Fprintln(out, "Welcome to hangman. I'm thinking of a word...")

	if *length == 0 {
		*length = askInt(in, out, fmt.Sprintf("Word length %v? ", dict.Lengths()))
	}
	if *guesses == 0 {
		*guesses = askInt(in, out, "How many wrong guesses? ")
	}

	g, err := game.New(dict.OfLength(*length), *length, *guesses)
	if err != nil {
		log.Fatal().Err(err).Msg("new game")
	}
	if g.CandidateCount() == 0 {
		log.Fatal().Int("length", *length).Msg("no words of that length")
	}

	if err := play(g, in, out, *debug); err != nil && !errors.Is(err, io.EOF) {
		log.Fatal().Err(err).Msg("play")
	}
}

// loadDictionary reads path, or the embedded list when path is empty.
func loadDictionary(path string) (*words.Dictionary, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if path == "" {
		rc, err = assets.Dictionary()
	} else {
		rc, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	list, err := words.Load(rc)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.New("dictionary has no words")
	}
	return words.New(list), nil
}

// play runs the prompt loop until the word is revealed or the budget is spent.
func play(g *game.Game, in *bufio.Scanner, out io.Writer, debug bool) error {
	for g.GuessesLeft() > 0 && !g.Solved() {
		pattern, err := g.Pattern()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nguesses left: %d\nguessed: %s\ncurrent: %s\n", g.GuessesLeft(), string(g.Guessed()), pattern)
		if debug {
			fmt.Fprintf(out, "%d words possible\n", g.CandidateCount())
		}
		fmt.Fprint(out, "Your guess? ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			return io.EOF
		}
		s := strings.ToLower(strings.TrimSpace(in.Text()))
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) || !unicode.IsLetter(r) {
			fmt.Fprintln(out, "Please type a single letter.")
			continue
		}

		n, err := g.Guess(r)
		switch {
		case errors.Is(err, game.ErrInvalidArgument):
			fmt.Fprintln(out, "You already guessed that.")
		case err != nil:
			return err
		case n == 0:
			fmt.Fprintf(out, "Sorry, there are no %c's\n", r)
		case n == 1:
			fmt.Fprintf(out, "Yes, there is one %c\n", r)
		default:
			fmt.Fprintf(out, "Yes, there are %d %c's\n", n, r)
		}
	}

	word := g.Words()[0]
	if g.Solved() {
		fmt.Fprintf(out, "\nanswer = %s\nYou beat me\n", word)
	} else {
		fmt.Fprintf(out, "\nanswer = %s\nSorry, you lose\n", word)
	}
	return nil
}

func askInt(in *bufio.Scanner, out io.Writer, prompt string) int {
	for {
		fmt.Fprint(out, prompt)
		if !in.Scan() {
			log.Fatal().Msg("no input")
		}
		var n int
		if _, err := fmt.Sscan(in.Text(), &n); err == nil && n >= 0 {
			return n
		}
		fmt.Fprintln(out, "Please enter a number.")
	}
}
