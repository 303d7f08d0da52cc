package linkstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/golinks/internal/apperr"
	"github.com/starford/golinks/internal/embed"
	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/search"
)

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	emb, err := embed.NewHash(4)
	require.NoError(t, err)
	return New(conn, emb), mock
}

var linkRowColumns = []string{"id", "created_at", "modified_at", "source", "is_alias", "target", "description"}

func TestUpdate_ZeroRowsIsNotFound(t *testing.T) {
	s, mock := mockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE links`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), 7, models.LinkInput{Source: "docs", Target: "https://docs/v2"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_ZeroRowsIsNotFound(t *testing.T) {
	s, mock := mockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM links WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, s.Delete(context.Background(), 3), apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverFailuresMapToUnavailable(t *testing.T) {
	failures := []error{
		sqlite3.Error{Code: sqlite3.ErrBusy},
		driver.ErrBadConn,
		errors.New("disk I/O error"),
	}
	for _, failure := range failures {
		s, mock := mockStore(t)
		mock.ExpectQuery(`FROM links l WHERE l.id`).WillReturnError(failure)

		_, err := s.GetByID(context.Background(), 1)
		assert.ErrorIs(t, err, apperr.ErrUnavailable, failure.Error())
	}
}

func TestQuery_CountFailurePropagates(t *testing.T) {
	s, mock := mockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM links l ORDER BY`).
		WillReturnRows(sqlmock.NewRows(linkRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM links`)).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrLocked})

	_, _, err := s.Query(context.Background(), search.Descriptor{Paging: search.Paging{Page: 1, Limit: 10}})
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr("op", nil))
	assert.ErrorIs(t, mapErr("op", context.Canceled), context.Canceled)
	assert.NotErrorIs(t, mapErr("op", context.Canceled), apperr.ErrUnavailable)
	assert.ErrorIs(t, mapErr("op", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}), apperr.ErrDuplicateKey)
	assert.ErrorIs(t, mapErr("op", apperr.ErrNotImplemented), apperr.ErrNotImplemented)
}
