package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/backend/internal/models"
)

type recorder struct {
	mu      sync.Mutex
	started []string
	ended   []string
}

func (r *recorder) SessionStarted(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, s.ID)
}

func (r *recorder) SessionEnded(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, id)
}

func TestManager_StartResolveEnd(t *testing.T) {
	rec := &recorder{}
	m := NewManager("secret", time.Hour, rec)

	s, token, err := m.Start(models.User{ID: "u1", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, []string{s.ID}, rec.started)

	resolved, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", resolved.UserID)
	assert.Equal(t, models.RoleStudent, resolved.Role)

	m.End(s.ID)
	m.End(s.ID)
	assert.Equal(t, []string{s.ID}, rec.ended)
	assert.False(t, m.Active(s.ID))

	_, err = m.Resolve(token)
	assert.ErrorIs(t, err, ErrEnded)
}

func TestManager_RejectsForeignToken(t *testing.T) {
	m := NewManager("secret", time.Hour)
	other := NewManager("other", time.Hour)

	_, token, err := other.Start(models.User{ID: "u1"})
	require.NoError(t, err)

	_, err = m.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.Resolve("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Expiry(t *testing.T) {
	rec := &recorder{}
	m := NewManager("secret", time.Minute, rec)
	now := time.Now()
	m.now = func() time.Time { return now }

	s, token, err := m.Start(models.User{ID: "u1"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Resolve(token)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, []string{s.ID}, rec.ended)
}

func TestManager_EndUser(t *testing.T) {
	m := NewManager("secret", time.Hour)
	a, _, _ := m.Start(models.User{ID: "u1"})
	b, _, _ := m.Start(models.User{ID: "u1"})
	c, _, _ := m.Start(models.User{ID: "u2"})

	assert.Equal(t, 2, m.EndUser("u1"))
	assert.False(t, m.Active(a.ID))
	assert.False(t, m.Active(b.ID))
	assert.True(t, m.Active(c.ID))
}
