package words

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	src := `# comment
Cool
wood

good
ally
cool
it's
naïve
r2d2
`
	got, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"ally", "cool", "good", "naïve", "wood"}, got)
}

func TestLoadEmpty(t *testing.T) {
	got, err := Load(strings.NewReader("\n# nothing\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDictionary(t *testing.T) {
	in := []string{"wood", "a", "ally", "cool", "größe", "cool"}
	d := New(in)

	assert.Equal(t, []string{"a", "ally", "cool", "größe", "wood"}, d.All())
	assert.Equal(t, []int{1, 4, 5}, d.Lengths())
	assert.Equal(t, 3, d.CountByLength(4))
	assert.Equal(t, 0, d.CountByLength(9))
	assert.Equal(t, []string{"ally", "cool", "wood"}, d.OfLength(4))
	assert.Equal(t, map[int]int{1: 1, 4: 3, 5: 1}, d.Stats())
	assert.Contains(t, d.Lengths(), d.RandomLength())

	// copies, not live state
	in[0] = "zzzz"
	d.OfLength(4)[0] = "zzzz"
	d.All()[0] = "zzzz"
	assert.Equal(t, []string{"ally", "cool", "wood"}, d.OfLength(4))
	assert.Equal(t, "a", d.All()[0])
}

func TestEmptyDictionary(t *testing.T) {
	d := New(nil)
	assert.Empty(t, d.All())
	assert.Empty(t, d.Lengths())
	assert.Equal(t, 0, d.RandomLength())
	assert.NotNil(t, d.OfLength(4))
	assert.Empty(t, d.OfLength(4))
}

func TestInitEmbedded(t *testing.T) {
	t.Setenv("WORDS_FILE", "")
	require.NoError(t, Init())

	d := Default()
	require.NotNil(t, d)
	assert.Contains(t, d.All(), "cool")
	ls := d.Lengths()
	require.NotEmpty(t, ls)
	assert.IsIncreasing(t, ls)
	for _, n := range ls {
		assert.Positive(t, d.CountByLength(n))
	}
}
