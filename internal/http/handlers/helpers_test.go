package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/kv"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/session"
	"schoolhub/backend/internal/store"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(kv.NewMemory(), quiet())
	require.NoError(t, s.Seed(context.Background(), nil))
	return s
}

var errFlaky = errors.New("connection reset by peer")

// flakyBackend fails single reads or writes of keys queued with failGet and
// failSet, and passes everything else through.
type flakyBackend struct {
	*kv.Memory
	mu   sync.Mutex
	gets map[string]int
	sets map[string]int
}

func (f *flakyBackend) failGet(key string) { f.queue(&f.gets, key) }

func (f *flakyBackend) failSet(key string) { f.queue(&f.sets, key) }

func (f *flakyBackend) queue(m *map[string]int, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if *m == nil {
		*m = map[string]int{}
	}
	(*m)[key]++
}

func (f *flakyBackend) take(m *map[string]int, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if (*m)[key] == 0 {
		return false
	}
	(*m)[key]--
	return true
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.take(&f.gets, key) {
		return nil, errFlaky
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	if f.take(&f.sets, key) {
		return errFlaky
	}
	return f.Memory.Set(ctx, key, value)
}

func newFlakyStore(t *testing.T) (*store.Store, *flakyBackend) {
	t.Helper()
	backend := &flakyBackend{Memory: kv.NewMemory()}
	s := store.New(backend, quiet())
	require.NoError(t, s.Seed(context.Background(), nil))
	return s, backend
}

func addUser(t *testing.T, s *store.Store, u models.User) *models.User {
	t.Helper()
	created, err := s.CreateUser(context.Background(), u)
	require.NoError(t, err)
	return created
}

// request builds a request carrying user and a session, as the auth middleware would.
func request(t *testing.T, method, target string, user *models.User, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if user != nil {
		ctx := httpctx.WithUser(req.Context(), user)
		ctx = httpctx.WithSession(ctx, session.Session{ID: "sess-" + user.ID, UserID: user.ID, Role: user.Role, ExpiresAt: time.Now().Add(time.Hour)})
		req = req.WithContext(ctx)
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request, pathValues map[string]string) *httptest.ResponseRecorder {
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
