// Package testutil provides shared test helpers for setting up link stores
// and services.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/golinks/internal/embed"
	"github.com/starford/golinks/internal/linkservice"
	"github.com/starford/golinks/internal/linkstore"
	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/observe"
)

// EmbeddingDims is the vector width used by test stores.
const EmbeddingDims = 8

// TestStore creates a temporary SQLite link store that is automatically
// cleaned up.
func TestStore(t *testing.T) *linkstore.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "golinks-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	emb, err := embed.NewHash(EmbeddingDims)
	if err != nil {
		t.Fatal(err)
	}
	store, err := linkstore.Open(dbFile.Name(), emb)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestService creates a service over a fresh TestStore.
func TestService(t *testing.T, hooks ...observe.Hook) (*linkservice.Service, *linkstore.Store) {
	t.Helper()
	store := TestStore(t)
	return linkservice.New(store, observe.Hooks(hooks)), store
}

// Seed creates each input in order and returns the stored links.
func Seed(t *testing.T, store linkstore.Gateway, inputs ...models.LinkInput) []*models.Link {
	t.Helper()
	out := make([]*models.Link, 0, len(inputs))
	for _, in := range inputs {
		l, err := store.Create(context.Background(), in)
		if err != nil {
			t.Fatalf("seed %q: %v", in.Source, err)
		}
		out = append(out, l)
	}
	return out
}

// URL is shorthand for a terminal link input.
func URL(source, target string) models.LinkInput {
	return models.LinkInput{Source: source, Target: target}
}

// Alias is shorthand for an alias link input.
func Alias(source, target string) models.LinkInput {
	return models.LinkInput{Source: source, Target: target, IsAlias: true}
}
