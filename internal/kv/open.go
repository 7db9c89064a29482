package kv

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"schoolhub/backend/internal/db"
)

// Open builds the backend named by opts.Kind. Redis connectivity is not
// checked here; the store reports it through its connection state.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindMemory:
		return NewMemory(), nil
	case KindPostgres:
		if opts.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres backend")
		}
		conn, err := db.Open(db.DriverPostgres, opts.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		return NewPostgres(conn)
	case KindSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = "schoolhub.db"
		}
		conn, err := db.Open(db.DriverSQLite, path)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		return NewSQLite(conn)
	case KindRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New("REDIS_ADDR is required for the redis backend")
		}
		return NewRedis(opts.RedisAddr, opts.RedisPassword, opts.RedisDB), nil
	case KindFirestore:
		return NewFirestore(ctx, opts.FirebaseProjectID, opts.FirebaseCredentialsFile)
	default:
		return nil, errors.Errorf("unsupported STORE_BACKEND: %s", opts.Kind)
	}
}
