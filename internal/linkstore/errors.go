package linkstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/golinks/internal/apperr"
)

var taxonomy = []error{
	apperr.ErrNotFound,
	apperr.ErrDuplicateKey,
	apperr.ErrInvalidInput,
	apperr.ErrNotImplemented,
	apperr.ErrUnavailable,
}

// mapErr translates driver errors into the apperr taxonomy. Errors already
// in the taxonomy and context errors pass through with op context only.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("linkstore: %s: %w", op, err)
	}
	for _, known := range taxonomy {
		if errors.Is(err, known) {
			return fmt.Errorf("linkstore: %s: %w", op, err)
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("linkstore: %s: %w", op, apperr.ErrNotFound)
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("linkstore: %s: %w", op, apperr.ErrDuplicateKey)
	}
	return fmt.Errorf("linkstore: %s: %w: %w", op, apperr.ErrUnavailable, err)
}
