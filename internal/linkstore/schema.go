// Package linkstore provides the SQLite-backed link store with a sqlite-vec
// nearest-neighbour index over source embeddings and SQL string-distance
// functions.
package linkstore

import (
	"database/sql"
	"fmt"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"

	"github.com/starford/golinks/internal/embed"
)

// DriverName is the database/sql driver registered by this package. It is
// go-sqlite3 with the vec0 module and the distance functions loaded on
// every connection.
const DriverName = "sqlite3_golinks"

// DefaultCandidateCap is the number of nearest neighbours considered by a
// semantic search before pagination.
const DefaultCandidateCap = 100

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS links (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  INTEGER NOT NULL,
	modified_at INTEGER NOT NULL,
	source      TEXT    NOT NULL UNIQUE,
	is_alias    INTEGER NOT NULL DEFAULT 0,
	target      TEXT    NOT NULL DEFAULT '',
	description TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_links_modified ON links(modified_at);
`

// The vector width is fixed when the table is first created; reopening a
// database with a different embedder size fails on the first write.
const vecSchemaSQL = `CREATE VIRTUAL TABLE IF NOT EXISTS vec_links USING vec0(source_embedding float[%d]);`

var registerOnce sync.Once

func registerDriver() {
	registerOnce.Do(func() {
		sqlite_vec.Auto()
		sql.Register(DriverName, &sqlite3.SQLiteDriver{ConnectHook: registerFuncs})
	})
}

// Store is the SQLite implementation of Gateway.
type Store struct {
	conn         *sql.DB
	embedder     embed.Embedder
	candidateCap int
}

// Option configures a Store.
type Option func(*Store)

// WithCandidateCap sets the nearest-neighbour cap k. Values below one are
// ignored.
func WithCandidateCap(k int) Option {
	return func(s *Store) {
		if k > 0 {
			s.candidateCap = k
		}
	}
}

// New wraps an already prepared connection. The schema is not applied.
func New(conn *sql.DB, embedder embed.Embedder, opts ...Option) *Store {
	s := &Store{
		conn:         conn,
		embedder:     embedder,
		candidateCap: DefaultCandidateCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens (or creates) the SQLite database at path and applies the
// schema. The vector table is sized by embedder.Dimensions(). Transactions
// take the write lock when they begin, so a writer waits on busy_timeout
// instead of failing to upgrade a read snapshot.
func Open(path string, embedder embed.Embedder, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("linkstore: embedder is required")
	}
	registerDriver()

	conn, err := sql.Open(DriverName, path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("linkstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("linkstore: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("linkstore: apply core schema: %w", err)
	}
	if _, err := conn.Exec(fmt.Sprintf(vecSchemaSQL, embedder.Dimensions())); err != nil {
		conn.Close()
		return nil, fmt.Errorf("linkstore: apply vector schema: %w", err)
	}
	return New(conn, embedder, opts...), nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
