package search

import (
	"fmt"

	"github.com/starford/golinks/internal/apperr"
)

// Kind is the retrieval shape a store must implement for a strategy.
type Kind int

const (
	// KindVector ranks the k nearest source embeddings by ascending distance.
	KindVector Kind = iota + 1
	// KindDistance ranks every source by an ascending distance function.
	KindDistance
	// KindPhonetic keeps sources whose phonetic code equals the query's.
	KindPhonetic
)

// Strategy names a concrete retrieval routine. Func is the SQL function a
// store evaluates for distance and phonetic kinds.
type Strategy struct {
	Kind Kind
	Func string
}

// Resolve is the single dispatch point from a search method to its
// retrieval strategy. Adding a method means adding a case here.
func Resolve(m Method) (Strategy, error) {
	switch m {
	case Semantic:
		return Strategy{Kind: KindVector}, nil
	case DamerauLevenshtein:
		return Strategy{Kind: KindDistance, Func: "dlevenshtein"}, nil
	case Levenshtein:
		return Strategy{Kind: KindDistance, Func: "levenshtein"}, nil
	case JaroWinkler:
		return Strategy{Kind: KindDistance, Func: "jaro_winkler_distance"}, nil
	case Soundex:
		return Strategy{Kind: KindPhonetic, Func: "soundex"}, nil
	case Metaphone:
		return Strategy{}, fmt.Errorf("search: method %s: %w", m, apperr.ErrNotImplemented)
	}
	return Strategy{}, fmt.Errorf("search: method %s: %w", m, apperr.ErrInvalidInput)
}
