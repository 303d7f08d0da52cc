// Package seed imports links from a YAML file and keeps them in sync while
// the file changes. Links are created or updated, never deleted.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/golinks/internal/checksum"
	"github.com/starford/golinks/internal/linkservice"
	"github.com/starford/golinks/internal/models"
)

// MaxLinks bounds the number of entries in one seed file.
const MaxLinks = 10000

// File is the on-disk seed format.
//
//	links:
//	  - source: docs
//	    target: https://example.com/docs
//	  - source: d
//	    is_alias: true
//	    target: docs
type File struct {
	Links []models.LinkInput `yaml:"links"`
}

// Validate rejects entries without a source and duplicated sources.
func (f *File) Validate() error {
	seen := make(map[string]int, len(f.Links))
	for i := range f.Links {
		in := &f.Links[i]
		in.Normalize()
		if err := in.Validate(); err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}
		if j, ok := seen[in.Source]; ok {
			return fmt.Errorf("links[%d]: source %q already defined at links[%d]", i, in.Source, j)
		}
		seen[in.Source] = i
	}
	return validation.ValidateStruct(f, validation.Field(&f.Links, validation.Length(0, MaxLinks)))
}

// Parse decodes and validates seed file content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &f, nil
}

// Upserter is the link capability the importer needs.
type Upserter interface {
	Upsert(ctx context.Context, in models.LinkInput) (*models.Link, linkservice.Outcome, error)
}

var _ Upserter = (*linkservice.Service)(nil)

// Report summarizes one import run.
type Report struct {
	Checksum  string `json:"checksum"`
	Skipped   bool   `json:"skipped"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
}

// Importer imports one seed file. It remembers the checksum of the last
// fully applied content and skips unchanged files.
type Importer struct {
	svc    Upserter
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	lastSum string
}

// NewImporter creates an Importer for the file at path.
func NewImporter(svc Upserter, path string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{svc: svc, path: path, logger: logger}
}

// Path returns the seed file path.
func (i *Importer) Path() string {
	return i.path
}

// Import applies the seed file. A link that fails to import is logged and
// counted; the run continues with the next one. Context errors abort the
// run.
func (i *Importer) Import(ctx context.Context) (Report, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	data, err := os.ReadFile(i.path)
	if err != nil {
		return Report{}, fmt.Errorf("seed: read %s: %w", i.path, err)
	}
	rep := Report{Checksum: checksum.Sum(data)}
	if rep.Checksum == i.lastSum {
		rep.Skipped = true
		return rep, nil
	}

	f, err := Parse(data)
	if err != nil {
		return rep, err
	}

	for _, in := range f.Links {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		_, outcome, err := i.svc.Upsert(ctx, in)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return rep, err
			}
			rep.Failed++
			i.logger.Warn("seed: import link failed",
				slog.String("source", in.Source),
				slog.String("error", err.Error()))
			continue
		}
		switch outcome {
		case linkservice.Created:
			rep.Created++
		case linkservice.Updated:
			rep.Updated++
		default:
			rep.Unchanged++
		}
	}

	if rep.Failed == 0 {
		i.lastSum = rep.Checksum
	}
	i.logger.Info("seed: imported",
		slog.String("path", i.path),
		slog.Int("created", rep.Created),
		slog.Int("updated", rep.Updated),
		slog.Int("unchanged", rep.Unchanged),
		slog.Int("failed", rep.Failed))
	return rep, nil
}
