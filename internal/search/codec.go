package search

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/starford/golinks/internal/apperr"
)

// Query-string field names of the navigation state.
const (
	FieldPage   = "page"
	FieldLimit  = "limit"
	FieldQuery  = "query"
	FieldMethod = "method"
	FieldSort   = "sort"
	FieldOrder  = "order"
)

// Encode renders st as a query-string fragment without the leading "?".
// Fields equal to their default are omitted, so the default state encodes
// to the empty string.
func Encode(st State) string {
	def := DefaultState()
	v := url.Values{}
	if st.Paging.Page != def.Paging.Page {
		v.Set(FieldPage, strconv.Itoa(st.Paging.Page))
	}
	if st.Paging.Limit != def.Paging.Limit {
		v.Set(FieldLimit, strconv.Itoa(st.Paging.Limit))
	}
	if st.Search.Query != def.Search.Query {
		v.Set(FieldQuery, st.Search.Query)
	}
	if st.Search.Method != def.Search.Method {
		v.Set(FieldMethod, st.Search.Method.String())
	}
	if st.Sort.By != def.Sort.By {
		v.Set(FieldSort, st.Sort.By.String())
	}
	if st.Sort.Order != def.Sort.Order {
		v.Set(FieldOrder, st.Sort.Order.String())
	}
	return v.Encode()
}

// Decode parses query-string values into a State. Absent or empty fields
// take their default; malformed ones yield apperr.ErrInvalidInput.
func Decode(v url.Values) (State, error) {
	st := DefaultState()

	if s := v.Get(FieldPage); s != "" {
		n, err := positiveInt(FieldPage, s)
		if err != nil {
			return State{}, err
		}
		st.Paging.Page = n
	}
	if s := v.Get(FieldLimit); s != "" {
		n, err := positiveInt(FieldLimit, s)
		if err != nil {
			return State{}, err
		}
		st.Paging.Limit = n
	}
	st.Search.Query = v.Get(FieldQuery)
	if s := v.Get(FieldMethod); s != "" {
		m, err := ParseMethod(s)
		if err != nil {
			return State{}, err
		}
		st.Search.Method = m
	}
	if s := v.Get(FieldSort); s != "" {
		by, err := ParseSortBy(s)
		if err != nil {
			return State{}, err
		}
		st.Sort.By = by
	}
	if s := v.Get(FieldOrder); s != "" {
		o, err := ParseOrder(s)
		if err != nil {
			return State{}, err
		}
		st.Sort.Order = o
	}
	return st, nil
}

// DecodeString parses an encoded fragment, with or without a leading "?".
func DecodeString(fragment string) (State, error) {
	if len(fragment) > 0 && fragment[0] == '?' {
		fragment = fragment[1:]
	}
	v, err := url.ParseQuery(fragment)
	if err != nil {
		return State{}, fmt.Errorf("search: parse state: %w: %w", apperr.ErrInvalidInput, err)
	}
	return Decode(v)
}

func positiveInt(field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("search: %s must be a positive integer, got %q: %w", field, s, apperr.ErrInvalidInput)
	}
	return n, nil
}

// Navigation holds the stateful URLs around one result page. Prev and Next
// are empty at the edges; Last is empty when there are no pages.
type Navigation struct {
	Self  string `json:"self"`
	First string `json:"first"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

// Navigate builds the navigation URLs for st under base. anchor, when set,
// is appended verbatim (for example "#links").
func Navigate(base, anchor string, st State, lastPage int) Navigation {
	at := func(page int) string {
		s := st
		s.Paging.Page = page
		return Href(base, anchor, s)
	}

	nav := Navigation{
		Self:  Href(base, anchor, st),
		First: at(1),
	}
	if st.Paging.Page > 1 {
		nav.Prev = at(min(st.Paging.Page-1, max(lastPage, 1)))
	}
	if st.Paging.Page < lastPage {
		nav.Next = at(st.Paging.Page + 1)
	}
	if lastPage > 0 {
		nav.Last = at(lastPage)
	}
	return nav
}

// Href joins base, the encoded state and anchor into a URL.
func Href(base, anchor string, st State) string {
	u := base
	if q := Encode(st); q != "" {
		u += "?" + q
	}
	return u + anchor
}
