// Package search defines the request-scoped search, paging and sort state,
// the method-to-strategy dispatch table and the navigation state codec.
package search

import (
	"fmt"
	"math"

	"github.com/starford/golinks/internal/apperr"
)

// Method selects how a query string is matched against link sources.
type Method int

// Search methods. The zero value is Semantic, which is also the default.
const (
	Semantic Method = iota
	DamerauLevenshtein
	Levenshtein
	JaroWinkler
	Soundex
	Metaphone
)

// Methods lists every recognized method in declaration order.
var Methods = []Method{Semantic, DamerauLevenshtein, Levenshtein, JaroWinkler, Soundex, Metaphone}

var methodNames = map[Method]string{
	Semantic:           "semantic",
	DamerauLevenshtein: "damerau_levenshtein",
	Levenshtein:        "levenshtein",
	JaroWinkler:        "jaro_winkler",
	Soundex:            "soundex",
	Metaphone:          "metaphone",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// ParseMethod maps a wire name back to a Method.
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("search: unknown method %q: %w", s, apperr.ErrInvalidInput)
}

// SortBy selects the ordering key of a result page.
type SortBy int

// Sort keys. The zero value is Relevance.
const (
	Relevance SortBy = iota
	Alphabetical
	Created
	Updated
)

var sortNames = map[SortBy]string{
	Relevance:    "relevance",
	Alphabetical: "alphabetical",
	Created:      "created",
	Updated:      "updated",
}

func (s SortBy) String() string {
	if n, ok := sortNames[s]; ok {
		return n
	}
	return fmt.Sprintf("sort(%d)", int(s))
}

// ParseSortBy maps a wire name back to a SortBy.
func ParseSortBy(s string) (SortBy, error) {
	for k, name := range sortNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("search: unknown sort %q: %w", s, apperr.ErrInvalidInput)
}

// Order is the direction of a non-relevance sort.
type Order int

// Sort directions. The zero value is Descending.
const (
	Descending Order = iota
	Ascending
)

func (o Order) String() string {
	switch o {
	case Descending:
		return "desc"
	case Ascending:
		return "asc"
	}
	return fmt.Sprintf("order(%d)", int(o))
}

// ParseOrder maps a wire name back to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "desc":
		return Descending, nil
	case "asc":
		return Ascending, nil
	}
	return 0, fmt.Errorf("search: unknown order %q: %w", s, apperr.ErrInvalidInput)
}

// Default state values.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Paging selects one page of a result set. Page is 1-based.
type Paging struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the number of rows preceding the page.
func (p Paging) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Validate rejects pages and limits below one, and pages whose offset does
// not fit in an int.
func (p Paging) Validate() error {
	if p.Limit < 1 {
		return fmt.Errorf("search: limit must be at least 1, got %d: %w", p.Limit, apperr.ErrInvalidInput)
	}
	if p.Page < 1 {
		return fmt.Errorf("search: page must be at least 1, got %d: %w", p.Page, apperr.ErrInvalidInput)
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return fmt.Errorf("search: page %d with limit %d is out of range: %w", p.Page, p.Limit, apperr.ErrInvalidInput)
	}
	return nil
}

// Search is the text query and the method used to match it.
type Search struct {
	Query  string `json:"query"`
	Method Method `json:"method"`
}

// Sort is the requested ordering. Order is ignored when By is Relevance.
type Sort struct {
	By    SortBy `json:"by"`
	Order Order  `json:"order"`
}

// Descriptor is the per-request composition handed to the store.
type Descriptor struct {
	Search Search
	Paging Paging
	Sort   Sort
	// Strategy is the resolved retrieval routine for Search.Method.
	Strategy Strategy
}

// State is the full navigation state of a search page.
type State struct {
	Paging Paging `json:"paging"`
	Search Search `json:"search"`
	Sort   Sort   `json:"sort"`
}

// DefaultState returns the state that encodes to the empty fragment.
func DefaultState() State {
	return State{
		Paging: Paging{Page: DefaultPage, Limit: DefaultLimit},
		Search: Search{Query: "", Method: Semantic},
		Sort:   Sort{By: Relevance, Order: Descending},
	}
}

func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (s SortBy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SortBy) UnmarshalText(b []byte) error {
	v, err := ParseSortBy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (o Order) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Order) UnmarshalText(b []byte) error {
	v, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
