// Package linkservice coordinates the link store, the alias resolver and the
// query planner behind one API used by the HTTP, MCP and seed layers.
package linkservice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/golinks/internal/apperr"
	"github.com/starford/golinks/internal/linkstore"
	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/observe"
	"github.com/starford/golinks/internal/query"
	"github.com/starford/golinks/internal/resolver"
	"github.com/starford/golinks/internal/search"
)

// Operation names reported to hooks.
const (
	OpCreate  = "link.create"
	OpGet     = "link.get"
	OpFind    = "link.find"
	OpUpdate  = "link.update"
	OpDelete  = "link.delete"
	OpSearch  = "link.search"
	OpResolve = "link.resolve"
)

// Results is a search page. NewSource is set when the query is not yet a
// registered source, so callers can offer to create it.
type Results struct {
	query.PagingResult
	NewSource string `json:"new_source,omitempty"`
}

// Lookup is the outcome of SearchOrFind: either the exact link or a page of
// ranked candidates.
type Lookup struct {
	Link    *models.Link `json:"link,omitempty"`
	Results *Results     `json:"results,omitempty"`
}

// Outcome reports what Upsert did.
type Outcome int

const (
	Unchanged Outcome = iota
	Created
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	}
	return "unchanged"
}

// Service is safe for concurrent use.
type Service struct {
	store    linkstore.Gateway
	resolver *resolver.Resolver
	planner  *query.Planner
	hook     observe.Hook
}

// New creates a Service over store. A nil hook discards events.
func New(store linkstore.Gateway, hook observe.Hook) *Service {
	if hook == nil {
		hook = observe.Nop{}
	}
	return &Service{
		store:    store,
		resolver: resolver.New(store),
		planner:  query.NewPlanner(store),
		hook:     hook,
	}
}

// Create stores a new link.
func (s *Service) Create(ctx context.Context, in models.LinkInput) (l *models.Link, err error) {
	span := observe.Start(ctx, s.hook, OpCreate, strings.TrimSpace(in.Source))
	defer func() { span.End(err) }()

	l, err = s.store.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("linkservice: create: %w", err)
	}
	span.Event.ID = l.ID
	return l, nil
}

// Get returns the link with the given id.
func (s *Service) Get(ctx context.Context, id int64) (l *models.Link, err error) {
	span := observe.Start(ctx, s.hook, OpGet, strconv.FormatInt(id, 10))
	span.Event.ID = id
	defer func() { span.End(err) }()

	l, err = s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("linkservice: get: %w", err)
	}
	return l, nil
}

// Find returns the link registered under source or apperr.ErrNotFound.
func (s *Service) Find(ctx context.Context, source string) (l *models.Link, err error) {
	span := observe.Start(ctx, s.hook, OpFind, source)
	defer func() { span.End(err) }()

	l, err = s.store.FindBySource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("linkservice: find: %w", err)
	}
	if l == nil {
		return nil, fmt.Errorf("linkservice: find %q: %w", source, apperr.ErrNotFound)
	}
	span.Event.ID = l.ID
	return l, nil
}

// Update replaces the writable fields of link id.
func (s *Service) Update(ctx context.Context, id int64, in models.LinkInput) (l *models.Link, err error) {
	span := observe.Start(ctx, s.hook, OpUpdate, strings.TrimSpace(in.Source))
	span.Event.ID = id
	defer func() { span.End(err) }()

	l, err = s.store.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("linkservice: update: %w", err)
	}
	return l, nil
}

// Delete removes link id.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	span := observe.Start(ctx, s.hook, OpDelete, strconv.FormatInt(id, 10))
	span.Event.ID = id
	defer func() { span.End(err) }()

	if err = s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("linkservice: delete: %w", err)
	}
	return nil
}

// Search runs the query described by st.
func (s *Service) Search(ctx context.Context, st search.State) (res *Results, err error) {
	span := observe.Start(ctx, s.hook, OpSearch, st.Search.Query)
	defer func() { span.End(err) }()

	page, err := s.planner.ExecuteState(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("linkservice: search: %w", err)
	}
	res = &Results{PagingResult: *page}

	q := strings.TrimSpace(st.Search.Query)
	if q == "" {
		return res, nil
	}
	existing, err := s.store.FindBySource(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("linkservice: search: %w", err)
	}
	if existing == nil {
		res.NewSource = q
	}
	return res, nil
}

// Resolve follows source through its aliases to the terminal link.
func (s *Service) Resolve(ctx context.Context, source string) (res *resolver.Resolution, err error) {
	span := observe.Start(ctx, s.hook, OpResolve, source)
	defer func() { span.End(err) }()

	res, err = s.resolver.Resolve(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("linkservice: resolve: %w", err)
	}
	span.Event.ID = res.Link.ID
	return res, nil
}

// SearchOrFind returns the link registered under alias when there is one,
// otherwise a search for alias using the rest of st.
func (s *Service) SearchOrFind(ctx context.Context, alias string, st search.State) (*Lookup, error) {
	l, err := s.store.FindBySource(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("linkservice: search or find: %w", err)
	}
	if l != nil {
		return &Lookup{Link: l}, nil
	}
	st.Search.Query = alias
	res, err := s.Search(ctx, st)
	if err != nil {
		return nil, err
	}
	return &Lookup{Results: res}, nil
}

// Upsert creates the link named by in.Source or updates it when any field
// differs. It never deletes.
func (s *Service) Upsert(ctx context.Context, in models.LinkInput) (*models.Link, Outcome, error) {
	in.Normalize()
	existing, err := s.store.FindBySource(ctx, in.Source)
	if err != nil {
		return nil, Unchanged, fmt.Errorf("linkservice: upsert: %w", err)
	}
	if existing == nil {
		l, err := s.Create(ctx, in)
		if err != nil {
			return nil, Unchanged, err
		}
		return l, Created, nil
	}
	if !in.Differs(*existing) {
		return existing, Unchanged, nil
	}
	l, err := s.Update(ctx, existing.ID, in)
	if err != nil {
		return nil, Unchanged, err
	}
	return l, Updated, nil
}
