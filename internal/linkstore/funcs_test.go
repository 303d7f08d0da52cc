package linkstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamerauLevenshtein(t *testing.T) {
	s := testStore(t)
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"widget", "widget", 0},
		{"widget", "widgte", 1},
		{"widget", "gadget", 2},
		{"widget", "w", 5},
		{"ca", "abc", 3},
		{"héllo", "hlélo", 1},
	}
	for _, c := range cases {
		var got int
		require.NoError(t, s.conn.QueryRow(`SELECT dlevenshtein(?, ?)`, c.a, c.b).Scan(&got))
		assert.Equal(t, c.want, got, "%q vs %q", c.a, c.b)
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("go", "go"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}

func TestJaroWinklerDistance(t *testing.T) {
	assert.InDelta(t, 0.0, jaroWinklerDistance("docs", "docs"), 1e-9)
	assert.Less(t, jaroWinklerDistance("docs", "doc"), jaroWinklerDistance("docs", "wiki"))
}

func TestSoundex(t *testing.T) {
	assert.Equal(t, soundex("Robert"), soundex("rupert"))
	assert.NotEqual(t, soundex("robert"), soundex("ashcraft"))
	assert.Equal(t, "", soundex("123"))
	assert.Equal(t, "", soundex(""))
}
