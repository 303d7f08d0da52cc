package linkstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/starford/golinks/internal/apperr"
	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/search"
)

// recency is the tie-break applied after every ordering.
const recency = `l.modified_at DESC, l.id DESC`

var sortColumns = map[search.SortBy]string{
	search.Alphabetical: "l.source",
	search.Created:      "l.created_at",
	search.Updated:      "l.modified_at",
}

// orderBy renders the ORDER BY list. Relevance keeps the strategy's native
// ordering (empty native means recency) and ignores the requested order.
func orderBy(sort search.Sort, native string) (string, error) {
	if sort.By == search.Relevance {
		if native == "" {
			return recency, nil
		}
		return native + ", " + recency, nil
	}
	col, ok := sortColumns[sort.By]
	if !ok {
		return "", fmt.Errorf("sort %s: %w", sort.By, apperr.ErrInvalidInput)
	}
	dir := "DESC"
	if sort.Order == search.Ascending {
		dir = "ASC"
	}
	return col + " " + dir + ", " + recency, nil
}

// Query returns one page of links for d and the size of the candidate pool.
// An empty query lists every link; otherwise the strategy resolved from the
// search method decides the pool and its native order.
func (s *Store) Query(ctx context.Context, d search.Descriptor) ([]models.Link, int, error) {
	if err := d.Paging.Validate(); err != nil {
		return nil, 0, mapErr("query", err)
	}
	strategy := d.Strategy
	if strategy.Kind == 0 {
		var err error
		if strategy, err = search.Resolve(d.Search.Method); err != nil {
			return nil, 0, mapErr("query", err)
		}
	}

	if strings.TrimSpace(d.Search.Query) == "" {
		return s.listRecent(ctx, d)
	}
	switch strategy.Kind {
	case search.KindVector:
		return s.nearest(ctx, d)
	case search.KindDistance:
		return s.rankByDistance(ctx, d, strategy.Func)
	case search.KindPhonetic:
		return s.phonetic(ctx, d, strategy.Func)
	}
	return nil, 0, mapErr("query", fmt.Errorf("strategy kind %d: %w", strategy.Kind, apperr.ErrNotImplemented))
}

func (s *Store) listRecent(ctx context.Context, d search.Descriptor) ([]models.Link, int, error) {
	order, err := orderBy(d.Sort, "")
	if err != nil {
		return nil, 0, mapErr("query: list", err)
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links l ORDER BY `+order+` LIMIT ? OFFSET ?`,
		d.Paging.Limit, d.Paging.Offset())
	if err != nil {
		return nil, 0, mapErr("query: list", err)
	}
	links, err := collect(rows)
	if err != nil {
		return nil, 0, mapErr("query: list", err)
	}
	total, err := s.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// rankByDistance scores every source with fn(query, source); lower is closer.
func (s *Store) rankByDistance(ctx context.Context, d search.Descriptor, fn string) ([]models.Link, int, error) {
	order, err := orderBy(d.Sort, "score ASC")
	if err != nil {
		return nil, 0, mapErr("query: distance", err)
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+linkColumns+`, `+fn+`(?, l.source) AS score FROM links l ORDER BY `+order+` LIMIT ? OFFSET ?`,
		d.Search.Query, d.Paging.Limit, d.Paging.Offset())
	if err != nil {
		return nil, 0, mapErr("query: distance", err)
	}
	links, err := collectScored(rows)
	if err != nil {
		return nil, 0, mapErr("query: distance", err)
	}
	total, err := s.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// phonetic keeps the sources whose fn code equals the query's code.
func (s *Store) phonetic(ctx context.Context, d search.Descriptor, fn string) ([]models.Link, int, error) {
	where := fn + `(l.source) = ` + fn + `(?) AND ` + fn + `(?) != ''`
	order, err := orderBy(d.Sort, "")
	if err != nil {
		return nil, 0, mapErr("query: phonetic", err)
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links l WHERE `+where+` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		d.Search.Query, d.Search.Query, d.Paging.Limit, d.Paging.Offset())
	if err != nil {
		return nil, 0, mapErr("query: phonetic", err)
	}
	links, err := collect(rows)
	if err != nil {
		return nil, 0, mapErr("query: phonetic", err)
	}
	var total int
	if err := s.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM links l WHERE `+where, d.Search.Query, d.Search.Query,
	).Scan(&total); err != nil {
		return nil, 0, mapErr("query: phonetic count", err)
	}
	return links, total, nil
}

const nearestCTE = `
WITH matches AS (
	SELECT rowid, distance
	FROM vec_links
	WHERE source_embedding MATCH ?
	AND k = ?
)
`

// nearest restricts the pool to the k nearest source embeddings before
// paginating.
func (s *Store) nearest(ctx context.Context, d search.Descriptor) ([]models.Link, int, error) {
	v, err := s.embedder.EmbedText(ctx, d.Search.Query)
	if err != nil {
		return nil, 0, mapErr("query: embed", err)
	}
	blob, err := sqlite_vec.SerializeFloat32(v)
	if err != nil {
		return nil, 0, mapErr("query: serialize embedding", err)
	}

	order, err := orderBy(d.Sort, "m.distance ASC")
	if err != nil {
		return nil, 0, mapErr("query: semantic", err)
	}
	rows, err := s.conn.QueryContext(ctx, nearestCTE+
		`SELECT `+linkColumns+`, m.distance AS score FROM matches m JOIN links l ON l.id = m.rowid ORDER BY `+order+` LIMIT ? OFFSET ?`,
		blob, s.candidateCap, d.Paging.Limit, d.Paging.Offset())
	if err != nil {
		return nil, 0, mapErr("query: semantic", err)
	}
	links, err := collectScored(rows)
	if err != nil {
		return nil, 0, mapErr("query: semantic", err)
	}

	var total int
	if err := s.conn.QueryRowContext(ctx, nearestCTE+
		`SELECT count(*) FROM matches m JOIN links l ON l.id = m.rowid`,
		blob, s.candidateCap,
	).Scan(&total); err != nil {
		return nil, 0, mapErr("query: semantic count", err)
	}
	return links, total, nil
}

func collect(rows *sql.Rows) ([]models.Link, error) {
	defer rows.Close()
	out := []models.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// collectScored reads rows that carry a trailing score column.
func collectScored(rows *sql.Rows) ([]models.Link, error) {
	defer rows.Close()
	out := []models.Link{}
	for rows.Next() {
		var score float64
		l, err := scanLink(rows, &score)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
