package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return mock
}

func TestBulkUpsert(t *testing.T) {
	mock := newMockPool(t)

	cols := []string{"airport_ident", "runway_ident"}
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_ils_associations"}, cols).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO .* ON CONFLICT .* DO NOTHING`).WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "ils_associations",
		Columns:      cols,
		ConflictKeys: cols,
	}, [][]any{
		{"LOWW", "16"},
		{"LOWW", "34"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_UpdatesNonKeyColumns(t *testing.T) {
	mock := newMockPool(t)

	cols := []string{"airport_ident", "runway_ident", "category"}
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_ils_associations"}, cols).WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO .* ON CONFLICT .* DO UPDATE SET "category" = EXCLUDED\."category"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "ils_associations",
		Columns:      cols,
		ConflictKeys: []string{"airport_ident", "runway_ident"},
	}, [][]any{
		{"LOWW", "16", "CAT I"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_EmptyRowsNoop(t *testing.T) {
	mock := newMockPool(t)

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "ils_associations",
		Columns:      []string{"airport_ident"},
		ConflictKeys: []string{"airport_ident"},
	}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_RequiresColumnsAndKeys(t *testing.T) {
	mock := newMockPool(t)
	rows := [][]any{{"LOWW"}}

	_, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "ils_associations",
		ConflictKeys: []string{"airport_ident"},
	}, rows)
	assert.Error(t, err)

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:   "ils_associations",
		Columns: []string{"airport_ident"},
	}, rows)
	assert.Error(t, err)
}

func TestBulkUpsert_CopyFails(t *testing.T) {
	mock := newMockPool(t)

	cols := []string{"airport_ident", "runway_ident"}
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_ils_associations"}, cols).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "ils_associations",
		Columns:      cols,
		ConflictKeys: cols,
	}, [][]any{{"LOWW", "16"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into temp table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"a", "b"`, quoteAndJoin([]string{"a", "b"}))
}
