package linkstore

import (
	"context"

	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/search"
)

// Gateway defines the link persistence and retrieval contract.
// Consumers should depend on this interface rather than the concrete *Store
// to facilitate testing with fakes.
type Gateway interface {
	Create(ctx context.Context, in models.LinkInput) (*models.Link, error)
	GetByID(ctx context.Context, id int64) (*models.Link, error)
	// FindBySource returns nil and no error when no link has the source.
	FindBySource(ctx context.Context, source string) (*models.Link, error)
	Update(ctx context.Context, id int64, in models.LinkInput) (*models.Link, error)
	Delete(ctx context.Context, id int64) error
	// Query returns one page of ranked rows and the total size of the
	// candidate pool. The two reads are not taken from one snapshot.
	Query(ctx context.Context, d search.Descriptor) ([]models.Link, int, error)
	Count(ctx context.Context) (int, error)
}

// Verify *Store satisfies Gateway at compile time.
var _ Gateway = (*Store)(nil)
