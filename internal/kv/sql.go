package kv

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
)

type dialect struct {
	migrate string
	get     string
	upsert  string
	delete  string
	scan    string
	// scanArgs builds the arguments for the scan query from a key prefix.
	scanArgs func(prefix string) []interface{}
}

var postgresDialect = dialect{
	migrate: `
		CREATE TABLE IF NOT EXISTS kv_documents (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	get: `SELECT value FROM kv_documents WHERE key = $1`,
	upsert: `
		INSERT INTO kv_documents (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value, updated_at = now()`,
	delete: `DELETE FROM kv_documents WHERE key = $1`,
	scan:   `SELECT key, value FROM kv_documents WHERE key LIKE $1 ESCAPE '\' ORDER BY key ASC`,
	scanArgs: func(prefix string) []interface{} {
		return []interface{}{escapeLike(prefix) + "%"}
	},
}

// sqlite LIKE ignores ASCII case, so the prefix is compared with substr instead.
var sqliteDialect = dialect{
	migrate: `
		CREATE TABLE IF NOT EXISTS kv_documents (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	get: `SELECT value FROM kv_documents WHERE key = ?`,
	upsert: `
		INSERT INTO kv_documents (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE
		SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
	delete: `DELETE FROM kv_documents WHERE key = ?`,
	scan:   `SELECT key, value FROM kv_documents WHERE substr(key, 1, ?) = ? ORDER BY key ASC`,
	scanArgs: func(prefix string) []interface{} {
		return []interface{}{len(prefix), prefix}
	},
}

// SQL stores documents in a single kv_documents table.
type SQL struct {
	db *sql.DB
	d  dialect
}

func NewPostgres(db *sql.DB) (*SQL, error) {
	return newSQL(db, postgresDialect)
}

func NewSQLite(db *sql.DB) (*SQL, error) {
	return newSQL(db, sqliteDialect)
}

func newSQL(db *sql.DB, d dialect) (*SQL, error) {
	s := &SQL{db: db, d: d}
	if err := s.migrate(); err != nil {
		return nil, errors.Wrap(err, "kv: migrate")
	}
	return s, nil
}

func (s *SQL) migrate() error {
	_, err := s.db.ExecContext(context.Background(), s.d.migrate)
	return err
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.QueryRowContext(ctx, s.d.get, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "kv: get %s", key)
	}
	return value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.d.upsert, key, value); err != nil {
		return errors.Wrapf(err, "kv: set %s", key)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.d.delete, key); err != nil {
		return errors.Wrapf(err, "kv: delete %s", key)
	}
	return nil
}

func (s *SQL) Scan(ctx context.Context, prefix string) ([]Pair, error) {
	rows, err := s.db.QueryContext(ctx, s.d.scan, s.d.scanArgs(prefix)...)
	if err != nil {
		return nil, errors.Wrapf(err, "kv: scan %s", prefix)
	}
	defer func() { _ = rows.Close() }()

	pairs := []Pair{}
	for rows.Next() {
		var pair Pair
		if err := rows.Scan(&pair.Key, &pair.Value); err != nil {
			return nil, errors.Wrapf(err, "kv: scan %s", prefix)
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
