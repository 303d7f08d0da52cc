package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/golinks/internal/apperr"
	"github.com/starford/golinks/internal/linkservice"
	"github.com/starford/golinks/internal/search"
)

// ListPath is the base of the navigation URLs in list responses.
const ListPath = "/api/links"

// maxBodyBytes bounds link request bodies.
const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc Service
}

// NewHandler creates a new Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func linkID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("id must be a positive integer: %w", apperr.ErrInvalidInput)
	}
	return id, nil
}

func decodeLink(w http.ResponseWriter, r *http.Request) (LinkRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", apperr.ErrInvalidInput)
	}
	return req, nil
}

func listResponse(res *linkservice.Results, st search.State) LinkListResponse {
	return LinkListResponse{
		Results: res,
		State:   st,
		Links:   search.Navigate(ListPath, "", st, res.LastPage),
	}
}

// Healthcheck handles GET /api/healthcheck.
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/healthcheck [get]
func (h *Handler) Healthcheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// ListLinks handles GET /api/links.
//
//	@Summary	Search or list links
//	@Tags		links
//	@Produce	json
//	@Param		page	query		int		false	"Page number"	default(1)
//	@Param		limit	query		int		false	"Page size"		default(10)
//	@Param		query	query		string	false	"Search text"
//	@Param		method	query		string	false	"Search method"	Enums(semantic, damerau_levenshtein, levenshtein, jaro_winkler, soundex, metaphone)
//	@Param		sort	query		string	false	"Sort key"		Enums(relevance, alphabetical, created, updated)
//	@Param		order	query		string	false	"Sort order"	Enums(desc, asc)
//	@Success	200		{object}	LinkListResponse
//	@Failure	400		{object}	errResponse
//	@Failure	501		{object}	errResponse
//	@Router		/links [get]
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	st, err := search.Decode(r.URL.Query())
	if err != nil {
		writeError(w, r, "list links", err)
		return
	}
	res, err := h.svc.Search(r.Context(), st)
	if err != nil {
		writeError(w, r, "list links", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(res, st))
}

// GetLink handles GET /api/links/{id}.
//
//	@Summary	Get a link by id
//	@Tags		links
//	@Produce	json
//	@Param		id	path		int	true	"Link id"
//	@Success	200	{object}	Link
//	@Failure	404	{object}	errResponse
//	@Router		/links/{id} [get]
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, r, "get link", err)
		return
	}
	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "get link", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// CreateLink handles POST /api/links.
//
//	@Summary	Create a link
//	@Tags		links
//	@Accept		json
//	@Produce	json
//	@Param		body	body		LinkRequest	true	"Link to create"
//	@Success	201		{object}	Link
//	@Failure	400		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Router		/links [post]
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLink(w, r)
	if err != nil {
		writeError(w, r, "create link", err)
		return
	}
	l, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, "create link", err)
		return
	}
	w.Header().Set("Location", ListPath+"/"+strconv.FormatInt(l.ID, 10))
	writeJSON(w, http.StatusCreated, l)
}

// UpdateLink handles PUT /api/links/{id}.
//
//	@Summary	Replace a link
//	@Tags		links
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int			true	"Link id"
//	@Param		body	body		LinkRequest	true	"New link fields"
//	@Success	200		{object}	Link
//	@Failure	400		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Router		/links/{id} [put]
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, r, "update link", err)
		return
	}
	req, err := decodeLink(w, r)
	if err != nil {
		writeError(w, r, "update link", err)
		return
	}
	l, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, "update link", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// DeleteLink handles DELETE /api/links/{id}.
//
//	@Summary	Delete a link
//	@Tags		links
//	@Param		id	path	int	true	"Link id"
//	@Success	204	"Link deleted"
//	@Failure	404	{object}	errResponse
//	@Router		/links/{id} [delete]
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, r, "delete link", err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, "delete link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchOrFind handles GET /api/search/{alias}. The exact link is returned
// when alias is registered; otherwise alias is searched with the request's
// paging, method and sort.
//
//	@Summary	Find a link by source or search for it
//	@Tags		search
//	@Produce	json
//	@Param		alias	path		string	true	"Source key"
//	@Success	200		{object}	SearchOrFindResponse
//	@Failure	400		{object}	errResponse
//	@Failure	501		{object}	errResponse
//	@Router		/search/{alias} [get]
func (h *Handler) SearchOrFind(w http.ResponseWriter, r *http.Request) {
	alias := strings.TrimSpace(chi.URLParam(r, "alias"))
	if alias == "" {
		writeError(w, r, "search", fmt.Errorf("alias is required: %w", apperr.ErrInvalidInput))
		return
	}
	st, err := search.Decode(r.URL.Query())
	if err != nil {
		writeError(w, r, "search", err)
		return
	}
	lookup, err := h.svc.SearchOrFind(r.Context(), alias, st)
	if err != nil {
		writeError(w, r, "search", err)
		return
	}
	if lookup.Link != nil {
		writeJSON(w, http.StatusOK, SearchOrFindResponse{Link: lookup.Link})
		return
	}
	st.Search.Query = alias
	resp := listResponse(lookup.Results, st)
	writeJSON(w, http.StatusOK, SearchOrFindResponse{Results: &resp})
}

// Resolve handles GET /api/resolve/{source}.
//
//	@Summary	Resolve an alias chain
//	@Tags		links
//	@Produce	json
//	@Param		source	path		string	true	"Source key"
//	@Success	200		{object}	ResolveResponse
//	@Failure	404		{object}	errResponse
//	@Failure	508		{object}	errResponse
//	@Router		/resolve/{source} [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Resolve(r.Context(), chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, r, "resolve", err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Link: res.Link, Chain: res.Chain, Hops: res.Hops()})
}
