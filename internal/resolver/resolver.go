// Package resolver follows alias chains to their terminal link.
package resolver

import (
	"context"
	"fmt"
	"slices"

	"github.com/starford/golinks/internal/apperr"
	"github.com/starford/golinks/internal/models"
)

// SourceFinder looks a link up by its exact source. It returns nil and no
// error when the source is not registered.
type SourceFinder interface {
	FindBySource(ctx context.Context, source string) (*models.Link, error)
}

// Resolution is the outcome of a successful resolve.
type Resolution struct {
	// Link is the terminal, non-alias link.
	Link *models.Link `json:"link"`
	// Chain lists the visited sources in order, ending with Link.Source.
	Chain []string `json:"chain"`
}

// Hops returns the number of alias indirections followed.
func (r *Resolution) Hops() int {
	return len(r.Chain) - 1
}

// Resolver walks alias chains with one lookup per hop. It holds no state
// between calls and is safe for concurrent use.
type Resolver struct {
	finder SourceFinder
}

// New creates a Resolver over finder.
func New(finder SourceFinder) *Resolver {
	return &Resolver{finder: finder}
}

// Resolve follows source through its aliases. It returns apperr.ErrNotFound
// when the start or any hop target is unregistered and apperr.ErrCycle when
// a link is reached twice. Visited links are compared by id. Lookup errors
// are returned unchanged and the context is checked before every hop.
func (r *Resolver) Resolve(ctx context.Context, source string) (*Resolution, error) {
	current, err := r.lookup(ctx, source)
	if err != nil {
		return nil, err
	}

	visited := []int64{current.ID}
	chain := []string{current.Source}
	for current.IsAlias {
		next, err := r.lookup(ctx, current.Target)
		if err != nil {
			return nil, err
		}
		if slices.Contains(visited, next.ID) {
			return nil, fmt.Errorf("resolver: %q revisits %q: %w", source, next.Source, apperr.ErrCycle)
		}
		visited = append(visited, next.ID)
		chain = append(chain, next.Source)
		current = next
	}
	return &Resolution{Link: current, Chain: chain}, nil
}

func (r *Resolver) lookup(ctx context.Context, source string) (*models.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l, err := r.finder.FindBySource(ctx, source)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("resolver: source %q: %w", source, apperr.ErrNotFound)
	}
	return l, nil
}
