package kv

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/backend/internal/db"
)

func newMockPostgres(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv_documents")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewPostgres(conn)
	require.NoError(t, err)
	return store, mock
}

func TestPostgres_Get(t *testing.T) {
	store, mock := newMockPostgres(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_documents WHERE key = $1")).
		WithArgs("user_1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"id":"1"}`)))

	value, err := store.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, string(value))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_documents WHERE key = $1")).
		WithArgs("user_2").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err = store.Get(ctx, "user_2")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Set(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_documents")).
		WithArgs("subjects", []byte(`["Math"]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Set(context.Background(), "subjects", []byte(`["Math"]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ScanEscapesPrefix(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value FROM kv_documents WHERE key LIKE $1")).
		WithArgs(`user\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("user_a", []byte(`1`)).
			AddRow("user_b", []byte(`2`)))

	pairs, err := store.Scan(context.Background(), "user_")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "user_b", pairs[1].Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLite_RoundTrip(t *testing.T) {
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	store, err := NewSQLite(conn)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user_a", []byte(`{"n":1}`)))
	require.NoError(t, store.Set(ctx, "user_a", []byte(`{"n":2}`)))
	require.NoError(t, store.Set(ctx, "User_b", []byte(`{"n":3}`)))
	require.NoError(t, store.Set(ctx, "schedule_a", []byte(`{}`)))

	value, err := store.Get(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, `{"n":2}`, string(value))

	pairs, err := store.Scan(ctx, "user_")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "user_a", pairs[0].Key)

	require.NoError(t, store.Delete(ctx, "user_a"))
	_, err = store.Get(ctx, "user_a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Ping(ctx))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Kind: "etcd"})
	assert.Error(t, err)

	backend, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, backend)
}
