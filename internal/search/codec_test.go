package search

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/golinks/internal/apperr"
)

func TestEncode_DefaultStateIsEmpty(t *testing.T) {
	assert.Equal(t, "", Encode(DefaultState()))
}

func TestEncode_OmitsDefaults(t *testing.T) {
	st := DefaultState()
	st.Paging.Page = 2
	st.Search.Query = "widget"

	assert.Equal(t, "page=2&query=widget", Encode(st))
}

func TestRoundTrip_WidgetState(t *testing.T) {
	st := DefaultState()
	st.Paging = Paging{Page: 2, Limit: 5}
	st.Search = Search{Query: "widget", Method: DamerauLevenshtein}

	got, err := DecodeString(Encode(st))
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestRoundTrip_AllFields(t *testing.T) {
	states := []State{DefaultState()}
	for _, m := range Methods {
		for _, by := range []SortBy{Relevance, Alphabetical, Created, Updated} {
			for _, o := range []Order{Ascending, Descending} {
				states = append(states, State{
					Paging: Paging{Page: 3, Limit: 25},
					Search: Search{Query: "go links & more?", Method: m},
					Sort:   Sort{By: by, Order: o},
				})
			}
		}
	}

	for _, st := range states {
		got, err := DecodeString(Encode(st))
		require.NoError(t, err)
		assert.Equal(t, st, got, "fragment %q", Encode(st))
	}
}

func TestDecode_EmptyValuesAreDefaults(t *testing.T) {
	got, err := Decode(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultState(), got)
}

func TestDecode_Invalid(t *testing.T) {
	cases := []string{
		"page=0",
		"limit=-1",
		"limit=ten",
		"method=telepathy",
		"sort=random",
		"order=sideways",
	}
	for _, c := range cases {
		_, err := DecodeString(c)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, c)
	}
}

func TestDecodeString_LeadingQuestionMark(t *testing.T) {
	got, err := DecodeString("?limit=5")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Paging.Limit)
}

func TestNavigate_MiddlePage(t *testing.T) {
	st := DefaultState()
	st.Paging.Page = 2
	st.Search.Query = "doc"

	nav := Navigate("/api/links", "#links", st, 3)

	assert.Equal(t, "/api/links?page=2&query=doc#links", nav.Self)
	assert.Equal(t, "/api/links?query=doc#links", nav.First)
	assert.Equal(t, "/api/links?query=doc#links", nav.Prev)
	assert.Equal(t, "/api/links?page=3&query=doc#links", nav.Next)
	assert.Equal(t, "/api/links?page=3&query=doc#links", nav.Last)
}

func TestNavigate_EmptyResult(t *testing.T) {
	nav := Navigate("/api/links", "", DefaultState(), 0)

	assert.Equal(t, "/api/links", nav.Self)
	assert.Empty(t, nav.Prev)
	assert.Empty(t, nav.Next)
	assert.Empty(t, nav.Last)
}

func TestNavigate_PastLastPage(t *testing.T) {
	st := DefaultState()
	st.Paging.Page = 9

	nav := Navigate("/l", "", st, 2)

	assert.Equal(t, "/l?page=2", nav.Prev)
	assert.Empty(t, nav.Next)
}

func TestStateJSONUsesWireNames(t *testing.T) {
	st := DefaultState()
	st.Search.Method = JaroWinkler
	st.Sort = Sort{By: Updated, Order: Ascending}

	b, err := json.Marshal(st.Sort)
	require.NoError(t, err)
	assert.JSONEq(t, `{"by":"updated","order":"asc"}`, string(b))

	var back Search
	require.NoError(t, json.Unmarshal([]byte(`{"query":"q","method":"jaro_winkler"}`), &back))
	assert.Equal(t, Search{Query: "q", Method: JaroWinkler}, back)

	assert.Error(t, json.Unmarshal([]byte(`{"method":"bogus"}`), &back))
}
