package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/golinks/internal/apperr"
	"github.com/starford/golinks/internal/linkservice"
	"github.com/starford/golinks/internal/linkstore"
	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/resolver"
	"github.com/starford/golinks/internal/search"
	"github.com/starford/golinks/internal/testutil"
)

// testEnv builds the /api and /go routers over a temp SQLite store.
func testEnv(t *testing.T) (http.Handler, *linkstore.Store) {
	t.Helper()
	svc, store := testutil.TestService(t)
	r := chi.NewRouter()
	r.Mount("/api", NewRouter(svc, nil))
	r.Mount("/go", NewRedirectRouter(svc))
	return r, store
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthcheck(t *testing.T) {
	h, _ := testEnv(t)
	w := do(t, h, http.MethodGet, "/api/healthcheck", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateGetUpdateDelete(t *testing.T) {
	h, _ := testEnv(t)

	w := do(t, h, http.MethodPost, "/api/links", LinkRequest{Source: "docs", Target: "https://docs", Description: "team docs"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Link](t, w)
	assert.Equal(t, fmt.Sprintf("/api/links/%d", created.ID), w.Header().Get("Location"))

	w = do(t, h, http.MethodGet, fmt.Sprintf("/api/links/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "team docs", decode[models.Link](t, w).Description)

	w = do(t, h, http.MethodPut, fmt.Sprintf("/api/links/%d", created.ID), LinkRequest{Source: "docs", Target: "https://docs/v2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "https://docs/v2", decode[models.Link](t, w).Target)

	w = do(t, h, http.MethodDelete, fmt.Sprintf("/api/links/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, fmt.Sprintf("/api/links/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateErrors(t *testing.T) {
	h, store := testEnv(t)
	testutil.Seed(t, store, testutil.URL("dup", "https://dup"))

	w := do(t, h, http.MethodPost, "/api/links", LinkRequest{Source: "dup", Target: "https://other"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/api/links", LinkRequest{Source: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/links", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	h, _ := testEnv(t)

	w := do(t, h, http.MethodPut, "/api/links/999", LinkRequest{Source: "x", Target: "https://x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodDelete, "/api/links/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/links/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListLinksPagingAndNavigation(t *testing.T) {
	h, store := testEnv(t)
	for i := 0; i < 25; i++ {
		testutil.Seed(t, store, testutil.URL(fmt.Sprintf("link%02d", i), "https://x"))
	}

	w := do(t, h, http.MethodGet, "/api/links?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Page     int               `json:"page"`
		Limit    int               `json:"limit"`
		LastPage int               `json:"last_page"`
		Items    []models.Link     `json:"items"`
		Links    search.Navigation `json:"links"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, 3, resp.LastPage)
	assert.Len(t, resp.Items, 10)
	assert.Equal(t, "/api/links?page=2", resp.Links.Self)
	assert.Equal(t, "/api/links", resp.Links.First)
	assert.Equal(t, "/api/links", resp.Links.Prev)
	assert.Equal(t, "/api/links?page=3", resp.Links.Next)
	assert.Equal(t, "/api/links?page=3", resp.Links.Last)
}

func TestListLinksErrors(t *testing.T) {
	h, _ := testEnv(t)

	w := do(t, h, http.MethodGet, "/api/links?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/links?method=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/links?page=922337203685477582", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/links?query=x&method=metaphone", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestListLinksOffersNewSource(t *testing.T) {
	h, store := testEnv(t)
	testutil.Seed(t, store, testutil.URL("widget", "https://w"))

	w := do(t, h, http.MethodGet, "/api/links?query=widgte&method=damerau_levenshtein", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "widgte", decode[map[string]any](t, w)["new_source"])
}

func TestSearchOrFind(t *testing.T) {
	h, store := testEnv(t)
	testutil.Seed(t, store, testutil.URL("docs", "https://docs"), testutil.URL("dogs", "https://dogs"))

	w := do(t, h, http.MethodGet, "/api/search/docs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hit := decode[SearchOrFindResponse](t, w)
	require.NotNil(t, hit.Link)
	assert.Equal(t, "https://docs", hit.Link.Target)
	assert.Nil(t, hit.Results)

	w = do(t, h, http.MethodGet, "/api/search/doc?method=levenshtein", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var miss struct {
		Results struct {
			NewSource string            `json:"new_source"`
			Items     []models.Link     `json:"items"`
			Links     search.Navigation `json:"links"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &miss))
	assert.Equal(t, "doc", miss.Results.NewSource)
	assert.Len(t, miss.Results.Items, 2)
	assert.Equal(t, "/api/links?method=levenshtein&query=doc", miss.Results.Links.Self)
}

func TestResolve(t *testing.T) {
	h, store := testEnv(t)
	testutil.Seed(t, store,
		testutil.URL("c", "https://c"),
		testutil.Alias("b", "c"),
		testutil.Alias("a", "b"),
		testutil.Alias("x", "y"),
		testutil.Alias("y", "x"),
	)

	w := do(t, h, http.MethodGet, "/api/resolve/a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[ResolveResponse](t, w)
	assert.Equal(t, []string{"a", "b", "c"}, res.Chain)
	assert.Equal(t, 2, res.Hops)
	assert.Equal(t, "https://c", res.Link.Target)

	w = do(t, h, http.MethodGet, "/api/resolve/x", nil)
	assert.Equal(t, http.StatusLoopDetected, w.Code)

	w = do(t, h, http.MethodGet, "/api/resolve/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRedirect(t *testing.T) {
	h, store := testEnv(t)
	testutil.Seed(t, store,
		testutil.URL("c", "https://example.com/c"),
		testutil.Alias("a", "c"),
		testutil.URL("blank", ""),
		testutil.Alias("loop", "loop"),
	)

	w := do(t, h, http.MethodGet, "/go/a", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/c", w.Header().Get("Location"))

	w = do(t, h, http.MethodGet, "/go?query=c", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/c", w.Header().Get("Location"))

	w = do(t, h, http.MethodGet, "/go/unknown", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/", loc.Path)
	assert.Equal(t, "unknown", loc.Query().Get(search.FieldQuery))

	w = do(t, h, http.MethodGet, "/go/blank", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?query=blank", w.Header().Get("Location"))

	w = do(t, h, http.MethodGet, "/go/loop", nil)
	assert.Equal(t, http.StatusLoopDetected, w.Code)
}

// stubService fails every call with err.
type stubService struct{ err error }

func (s stubService) Create(context.Context, models.LinkInput) (*models.Link, error) {
	return nil, s.err
}
func (s stubService) Get(context.Context, int64) (*models.Link, error) { return nil, s.err }
func (s stubService) Update(context.Context, int64, models.LinkInput) (*models.Link, error) {
	return nil, s.err
}
func (s stubService) Delete(context.Context, int64) error { return s.err }
func (s stubService) Search(context.Context, search.State) (*linkservice.Results, error) {
	return nil, s.err
}
func (s stubService) SearchOrFind(context.Context, string, search.State) (*linkservice.Lookup, error) {
	return nil, s.err
}
func (s stubService) Resolve(context.Context, string) (*resolver.Resolution, error) {
	return nil, s.err
}

func TestStoreUnavailableMapsTo503(t *testing.T) {
	h := NewRouter(stubService{err: fmt.Errorf("%w: disk I/O error", apperr.ErrUnavailable)}, nil)

	w := do(t, h, http.MethodGet, "/links", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"store unavailable"}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.ErrNotFound, http.StatusNotFound},
		{apperr.ErrDuplicateKey, http.StatusConflict},
		{apperr.ErrInvalidInput, http.StatusBadRequest},
		{apperr.ErrNotImplemented, http.StatusNotImplemented},
		{apperr.ErrCycle, http.StatusLoopDetected},
		{apperr.ErrUnavailable, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", apperr.ErrCycle), http.StatusLoopDetected},
	}
	for _, c := range cases {
		got, _ := statusFor(c.err)
		assert.Equal(t, c.want, got, c.err.Error())
	}
}
