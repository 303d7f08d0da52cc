package linkstore

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"github.com/mattn/go-sqlite3"
	"github.com/xrash/smetrics"
)

// Jaro-Winkler tuning: boost above 0.7 similarity using up to four prefix
// characters.
const (
	jaroWinklerBoost  = 0.7
	jaroWinklerPrefix = 4
)

// registerFuncs installs the ranking functions on a new connection. Every
// function is deterministic so SQLite may cache results within a statement.
// dlevenshtein is the optimal string alignment distance over runes.
func registerFuncs(conn *sqlite3.SQLiteConn) error {
	funcs := []struct {
		name string
		impl any
	}{
		{"dlevenshtein", edlib.OSADamerauLevenshteinDistance},
		{"levenshtein", levenshtein},
		{"jaro_winkler_distance", jaroWinklerDistance},
		{"soundex", soundex},
	}
	for _, f := range funcs {
		if err := conn.RegisterFunc(f.name, f.impl, true); err != nil {
			return err
		}
	}
	return nil
}

func levenshtein(a, b string) int {
	return smetrics.WagnerFischer(a, b, 1, 1, 1)
}

// jaroWinklerDistance turns the Jaro-Winkler similarity into a distance so
// every distance strategy sorts ascending.
func jaroWinklerDistance(a, b string) float64 {
	return 1 - smetrics.JaroWinkler(a, b, jaroWinklerBoost, jaroWinklerPrefix)
}

// soundex returns the Soundex code of the ASCII letters in s, or "" when s
// has none.
func soundex(s string) string {
	letters := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
	if letters == "" {
		return ""
	}
	return smetrics.Soundex(letters)
}
