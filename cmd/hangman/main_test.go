package main

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/game"
)

func run(t *testing.T, dict []string, guesses int, input string, debug bool) (string, error) {
	t.Helper()
	g, err := game.New(dict, 4, guesses)
	require.NoError(t, err)
	var out bytes.Buffer
	err = play(g, bufio.NewScanner(strings.NewReader(input)), &out, debug)
	return out.String(), err
}

func TestPlayWin(t *testing.T) {
	out, err := run(t, []string{"wwww"}, 2, "c\nW\n", false)
	require.NoError(t, err)
	assert.Contains(t, out, "Sorry, there are no c's")
	assert.Contains(t, out, "Yes, there are 4 w's")
	assert.Contains(t, out, "answer = wwww")
	assert.Contains(t, out, "You beat me")
}

func TestPlayLose(t *testing.T) {
	out, err := run(t, []string{"wwww"}, 2, "1\nc\nc\nd\n", true)
	require.NoError(t, err)
	assert.Contains(t, out, "Please type a single letter.")
	assert.Contains(t, out, "You already guessed that.")
	assert.Contains(t, out, "1 words possible")
	assert.Contains(t, out, "Sorry, you lose")
}

func TestPlayEOF(t *testing.T) {
	_, err := run(t, []string{"ally", "cool"}, 3, "", false)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLoadDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# mine\nWood\ncool\nno1\n"), 0o644))

	d, err := loadDictionary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cool", "wood"}, d.All())

	embedded, err := loadDictionary("")
	require.NoError(t, err)
	assert.Contains(t, embedded.All(), "cool")

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0o644))
	_, err = loadDictionary(empty)
	assert.Error(t, err)

	_, err = loadDictionary(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
