// Package kv holds the raw document backends behind the record store. Values
// are opaque JSON bytes; backends never decode them.
package kv

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when the key has never been written or was removed.
var ErrNotFound = errors.New("kv: key not found")

type Pair struct {
	Key   string
	Value []byte
}

// Backend is a last-writer-wins document store. Scan returns pairs sorted by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Scan(ctx context.Context, prefix string) ([]Pair, error)
	Ping(ctx context.Context) error
	Close() error
}

const (
	KindMemory    = "memory"
	KindPostgres  = "postgres"
	KindSQLite    = "sqlite"
	KindRedis     = "redis"
	KindFirestore = "firestore"
)

type Options struct {
	Kind string

	DatabaseURL string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FirebaseProjectID       string
	FirebaseCredentialsFile string
}
