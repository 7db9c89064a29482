// Package store is the record store facade. Every call is fallible: backend
// failures flip the store into a disconnected state instead of panicking. Get
// and the plain typed readers fall back to defaults for display; the Load
// variants report failed reads so read-modify-write callers never write a
// default over data they could not read.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/pkg/errors"

	"schoolhub/backend/internal/kv"
)

var (
	// ErrOffline is returned while the backend is unreachable.
	ErrOffline = errors.New("store: backend unreachable")
	// ErrCorrupt is returned when a stored value cannot be decoded.
	ErrCorrupt = errors.New("store: stored value is not decodable")
)

type Store struct {
	backend   kv.Backend
	log       *slog.Logger
	connected atomic.Bool
}

type Entry[T any] struct {
	Key   string
	Value T
}

// Snapshot maps every persisted key to its raw stored JSON.
type Snapshot map[string]json.RawMessage

func New(backend kv.Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{backend: backend, log: logger.With("component", "store")}
	s.connected.Store(true)
	return s
}

// Connected reports the result of the most recent backend call.
func (s *Store) Connected() bool {
	return s.connected.Load()
}

// CheckConnection pings the backend and updates the connection state.
func (s *Store) CheckConnection(ctx context.Context) bool {
	err := s.backend.Ping(ctx)
	s.observe("ping", "", err)
	return err == nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) observe(op, key string, err error) {
	if err == nil || errors.Is(err, kv.ErrNotFound) {
		if !s.connected.Swap(true) {
			s.log.Info("store reconnected")
		}
		return
	}
	if s.connected.Swap(false) {
		s.log.Warn("store disconnected", "op", op, "key", key, "err", err)
		return
	}
	s.log.Debug("store call failed", "op", op, "key", key, "err", err)
}

func (s *Store) getRaw(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.backend.Get(ctx, key)
	s.observe("get", key, err)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(ErrOffline, err.Error())
	}
	return raw, true, nil
}

// Load decodes the value under key for callers that write the result back. A
// missing key is not an error; an unreachable backend or an undecodable value is.
func Load[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var value T
	raw, ok, err := s.getRaw(ctx, key)
	if err != nil || !ok {
		return value, false, err
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		s.log.Error("stored value is not decodable", "key", key, "err", err)
		var zero T
		return zero, false, errors.Wrapf(ErrCorrupt, "%s: %v", key, err)
	}
	return value, true, nil
}

// Get decodes the value under key. It returns false when the key is missing,
// the backend is unreachable, or the stored value cannot be decoded.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool) {
	value, ok, err := Load[T](ctx, s, key)
	if err != nil {
		return value, false
	}
	return value, ok
}

// Set overwrites key. There is no version check: the last write wins.
func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "store: encode %s", key)
	}
	return s.setRaw(ctx, key, raw)
}

func (s *Store) setRaw(ctx context.Context, key string, raw []byte) error {
	err := s.backend.Set(ctx, key, raw)
	s.observe("set", key, err)
	if err != nil {
		return errors.Wrap(ErrOffline, err.Error())
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.backend.Delete(ctx, key)
	s.observe("delete", key, err)
	if err != nil {
		return errors.Wrap(ErrOffline, err.Error())
	}
	return nil
}

func (s *Store) scanRaw(ctx context.Context, prefix string) ([]kv.Pair, error) {
	pairs, err := s.backend.Scan(ctx, prefix)
	s.observe("scan", prefix, err)
	if err != nil {
		return nil, errors.Wrap(ErrOffline, err.Error())
	}
	return pairs, nil
}

// Scan decodes every value whose key starts with prefix, skipping entries that
// fail to decode.
func Scan[T any](ctx context.Context, s *Store, prefix string) []Entry[T] {
	entries, _ := LoadScan[T](ctx, s, prefix)
	return entries
}

// LoadScan is Scan that reports an unreachable backend instead of returning an
// empty result.
func LoadScan[T any](ctx context.Context, s *Store, prefix string) ([]Entry[T], error) {
	pairs, err := s.scanRaw(ctx, prefix)
	if err != nil {
		return []Entry[T]{}, err
	}
	entries := make([]Entry[T], 0, len(pairs))
	for _, pair := range pairs {
		var value T
		if err := json.Unmarshal(pair.Value, &value); err != nil {
			s.log.Error("stored value is not decodable", "key", pair.Key, "err", err)
			continue
		}
		entries = append(entries, Entry[T]{Key: pair.Key, Value: value})
	}
	return entries, nil
}

// ExportAll reads every persisted key as stored, without re-encoding.
func (s *Store) ExportAll(ctx context.Context) (Snapshot, error) {
	snapshot := Snapshot{}
	for _, key := range fixedKeys {
		raw, ok, err := s.getRaw(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			snapshot[key] = raw
		}
	}
	for _, prefix := range keyPrefixes {
		pairs, err := s.scanRaw(ctx, prefix)
		if err != nil {
			return nil, err
		}
		for _, pair := range pairs {
			snapshot[pair.Key] = pair.Value
		}
	}
	return snapshot, nil
}

// ImportAll writes every snapshot value verbatim. The snapshot is checked
// before anything is written; unknown keys and invalid JSON reject it whole.
func (s *Store) ImportAll(ctx context.Context, snapshot Snapshot) error {
	for key, raw := range snapshot {
		if !IsPersistedKey(key) {
			return errors.Errorf("store: import: unknown key %q", key)
		}
		if !json.Valid(raw) {
			return errors.Errorf("store: import: value for %q is not valid JSON", key)
		}
	}
	for key, raw := range snapshot {
		if err := s.setRaw(ctx, key, raw); err != nil {
			return errors.Wrapf(err, "store: import %s", key)
		}
	}
	return nil
}
