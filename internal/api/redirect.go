package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/golinks/internal/apperr"
	"github.com/starford/golinks/internal/search"
)

// SearchPage is where unknown sources are sent to be searched for.
const SearchPage = "/"

// Redirect handles GET /go/{source} and GET /go?query=&method=. A resolvable
// source redirects to its terminal target; an unknown source, or a terminal
// link without a target, redirects to the search page carrying the source
// as the query.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	st, err := search.Decode(r.URL.Query())
	if err != nil {
		writeError(w, r, "redirect", err)
		return
	}
	if source := chi.URLParam(r, "source"); source != "" {
		st.Search.Query = source
	}
	st.Search.Query = strings.TrimSpace(st.Search.Query)
	if st.Search.Query == "" {
		http.Redirect(w, r, SearchPage, http.StatusFound)
		return
	}

	res, err := h.svc.Resolve(r.Context(), st.Search.Query)
	switch {
	case err == nil && res.Link.Target != "":
		http.Redirect(w, r, res.Link.Target, http.StatusFound)
	case err == nil, errors.Is(err, apperr.ErrNotFound):
		http.Redirect(w, r, search.Href(SearchPage, "", st), http.StatusFound)
	default:
		writeError(w, r, "redirect", err)
	}
}
