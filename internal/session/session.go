// Package session owns the per-login application context. A Session is created
// when credentials are accepted and torn down on logout or expiry; components
// that need "the current user" are handed the Session instead of reading globals.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"schoolhub/backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("session: invalid token")
	ErrExpired      = errors.New("session: expired")
	ErrEnded        = errors.New("session: ended")
)

type Session struct {
	ID        string
	UserID    string
	Role      models.Role
	StartedAt time.Time
	ExpiresAt time.Time
}

// Lifecycle is notified when sessions begin and end.
type Lifecycle interface {
	SessionStarted(s Session)
	SessionEnded(id string)
}

type claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret    []byte
	ttl       time.Duration
	lifecycle []Lifecycle
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session
}

func NewManager(secret string, ttl time.Duration, lifecycle ...Lifecycle) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		secret:    []byte(secret),
		ttl:       ttl,
		lifecycle: lifecycle,
		now:       time.Now,
		sessions:  map[string]Session{},
	}
}

// Start opens a session for user and returns it with its signed token.
func (m *Manager) Start(user models.User) (Session, string, error) {
	now := m.now().UTC()
	s := Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		StartedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}).SignedString(m.secret)
	if err != nil {
		return Session{}, "", errors.Wrap(err, "session: sign token")
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	for _, l := range m.lifecycle {
		l.SessionStarted(s)
	}
	return s, token, nil
}

// Resolve validates token and returns the live session it names.
func (m *Manager) Resolve(token string) (Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			m.End(c.ID)
			return Session{}, ErrExpired
		}
		return Session{}, ErrInvalidToken
	}

	m.mu.RLock()
	s, ok := m.sessions[c.ID]
	m.mu.RUnlock()
	if !ok {
		return Session{}, ErrEnded
	}
	if !m.now().Before(s.ExpiresAt) {
		m.End(s.ID)
		return Session{}, ErrExpired
	}
	return s, nil
}

// End tears down the session. Ending an unknown session is a no-op.
func (m *Manager) End(id string) {
	if id == "" {
		return
	}
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	for _, l := range m.lifecycle {
		l.SessionEnded(id)
	}
}

// EndUser ends every session of userID, e.g. after a ban or account deletion.
func (m *Manager) EndUser(userID string) int {
	m.mu.RLock()
	var ids []string
	for id, s := range m.sessions {
		if s.UserID == userID {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.End(id)
	}
	return len(ids)
}

func (m *Manager) Active(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[id]
	return ok
}
