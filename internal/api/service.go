package api

import (
	"context"

	"github.com/starford/golinks/internal/linkservice"
	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/resolver"
	"github.com/starford/golinks/internal/search"
)

// Service is the link capability the handlers depend on.
type Service interface {
	Create(ctx context.Context, in models.LinkInput) (*models.Link, error)
	Get(ctx context.Context, id int64) (*models.Link, error)
	Update(ctx context.Context, id int64, in models.LinkInput) (*models.Link, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, st search.State) (*linkservice.Results, error)
	SearchOrFind(ctx context.Context, alias string, st search.State) (*linkservice.Lookup, error)
	Resolve(ctx context.Context, source string) (*resolver.Resolution, error)
}

var _ Service = (*linkservice.Service)(nil)
