// Package query turns search, paging and sort requests into store queries
// and derives page metadata from the returned totals.
package query

import (
	"context"
	"fmt"

	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/search"
)

// Gateway is the store capability the planner needs.
type Gateway interface {
	Query(ctx context.Context, d search.Descriptor) ([]models.Link, int, error)
}

// PagingResult is one page of links plus its position in the full result.
type PagingResult struct {
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
	LastPage int           `json:"last_page"`
	Total    int           `json:"total"`
	Items    []models.Link `json:"items"`
}

// Planner executes searches against a Gateway.
type Planner struct {
	gateway Gateway
}

// NewPlanner creates a Planner over gw.
func NewPlanner(gw Gateway) *Planner {
	return &Planner{gateway: gw}
}

// Execute validates the request, resolves the search method and runs the
// store query. Methods without a retrieval routine fail with
// apperr.ErrNotImplemented before the store is touched. Store errors are
// returned unchanged.
func (p *Planner) Execute(ctx context.Context, s search.Search, paging search.Paging, sort search.Sort) (*PagingResult, error) {
	if err := paging.Validate(); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	strategy, err := search.Resolve(s.Method)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	items, total, err := p.gateway.Query(ctx, search.Descriptor{
		Search:   s,
		Paging:   paging,
		Sort:     sort,
		Strategy: strategy,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Link{}
	}
	return &PagingResult{
		Page:     paging.Page,
		Limit:    paging.Limit,
		LastPage: LastPage(total, paging.Limit),
		Total:    total,
		Items:    items,
	}, nil
}

// ExecuteState runs the query described by a decoded navigation state.
func (p *Planner) ExecuteState(ctx context.Context, st search.State) (*PagingResult, error) {
	return p.Execute(ctx, st.Search, st.Paging, st.Sort)
}

// LastPage returns ceil(total/limit), or 0 when there are no rows.
func LastPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
