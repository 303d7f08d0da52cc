package linkstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/starford/golinks/internal/apperr"
	"github.com/starford/golinks/internal/models"
)

const linkColumns = `l.id, l.created_at, l.modified_at, l.source, l.is_alias, l.target, l.description`

type scanner interface {
	Scan(dest ...any) error
}

// scanLink reads the linkColumns projection followed by any extra columns.
func scanLink(row scanner, extra ...any) (models.Link, error) {
	var (
		l                 models.Link
		created, modified int64
	)
	dest := append([]any{&l.ID, &created, &modified, &l.Source, &l.IsAlias, &l.Target, &l.Description}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Link{}, err
	}
	l.CreatedAt = time.Unix(0, created).UTC()
	l.ModifiedAt = time.Unix(0, modified).UTC()
	return l, nil
}

func prepareInput(in models.LinkInput) (models.LinkInput, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return in, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return in, nil
}

// embedSource computes the serialized vector for a source key.
func (s *Store) embedSource(ctx context.Context, source string) ([]byte, error) {
	v, err := s.embedder.EmbedText(ctx, source)
	if err != nil {
		return nil, err
	}
	blob, err := sqlite_vec.SerializeFloat32(v)
	if err != nil {
		return nil, fmt.Errorf("serialize embedding: %w", err)
	}
	return blob, nil
}

// Create inserts a new link and its source embedding in one transaction.
func (s *Store) Create(ctx context.Context, in models.LinkInput) (*models.Link, error) {
	in, err := prepareInput(in)
	if err != nil {
		return nil, mapErr("create", err)
	}
	vec, err := s.embedSource(ctx, in.Source)
	if err != nil {
		return nil, mapErr("create", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapErr("create: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO links (created_at, modified_at, source, is_alias, target, description)
		VALUES (?, ?, ?, ?, ?, ?)
	`, now.UnixNano(), now.UnixNano(), in.Source, in.IsAlias, in.Target, in.Description)
	if err != nil {
		return nil, mapErr("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapErr("create: last insert id", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO vec_links (rowid, source_embedding) VALUES (?, ?)`, id, vec); err != nil {
		return nil, mapErr("create: index embedding", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapErr("create: commit", err)
	}

	return &models.Link{
		ID:          id,
		CreatedAt:   time.Unix(0, now.UnixNano()).UTC(),
		ModifiedAt:  time.Unix(0, now.UnixNano()).UTC(),
		Source:      in.Source,
		IsAlias:     in.IsAlias,
		Target:      in.Target,
		Description: in.Description,
	}, nil
}

// GetByID returns the link with the given id or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.Link, error) {
	l, err := scanLink(s.conn.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links l WHERE l.id = ?`, id))
	if err != nil {
		return nil, mapErr("get", err)
	}
	return &l, nil
}

// FindBySource returns the link registered under source, or nil when there
// is none.
func (s *Store) FindBySource(ctx context.Context, source string) (*models.Link, error) {
	l, err := scanLink(s.conn.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links l WHERE l.source = ?`, source))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr("find", err)
	}
	return &l, nil
}

// Update replaces the writable fields of link id. The embedding is computed
// before the write transaction opens; the row write, the embedding refresh
// and the read-back then share one transaction, and a row that vanished in
// the meantime is reported as apperr.ErrNotFound.
func (s *Store) Update(ctx context.Context, id int64, in models.LinkInput) (*models.Link, error) {
	in, err := prepareInput(in)
	if err != nil {
		return nil, mapErr("update", err)
	}
	vec, err := s.embedSource(ctx, in.Source)
	if err != nil {
		return nil, mapErr("update", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapErr("update: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		UPDATE links
		SET source = ?, is_alias = ?, target = ?, description = ?, modified_at = ?
		WHERE id = ?
	`, in.Source, in.IsAlias, in.Target, in.Description, time.Now().UTC().UnixNano(), id)
	if err != nil {
		return nil, mapErr("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, mapErr("update: rows affected", err)
	}
	if n == 0 {
		return nil, mapErr("update", apperr.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE vec_links SET source_embedding = ? WHERE rowid = ?`, vec, id); err != nil {
		return nil, mapErr("update: index embedding", err)
	}
	updated, err := scanLink(tx.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links l WHERE l.id = ?`, id))
	if err != nil {
		return nil, mapErr("update: read back", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapErr("update: commit", err)
	}
	return &updated, nil
}

// Delete removes link id and its embedding. Zero affected rows is
// apperr.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return mapErr("delete: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return mapErr("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr("delete: rows affected", err)
	}
	if n == 0 {
		return mapErr("delete", apperr.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vec_links WHERE rowid = ?`, id); err != nil {
		return mapErr("delete: drop embedding", err)
	}
	return mapErr("delete: commit", tx.Commit())
}

// Count returns the number of stored links.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT count(*) FROM links`).Scan(&n); err != nil {
		return 0, mapErr("count", err)
	}
	return n, nil
}
