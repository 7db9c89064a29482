package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub/backend/internal/models"
)

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, bool) {
	user, ok, err := s.LoadUser(ctx, userID)
	if err != nil {
		return nil, false
	}
	return user, ok
}

// LoadUser tells a missing user apart from a failed read.
func (s *Store) LoadUser(ctx context.Context, userID string) (*models.User, bool, error) {
	user, ok, err := Load[models.User](ctx, s, UserKey(userID))
	if err != nil || !ok {
		return nil, false, err
	}
	return &user, true, nil
}

func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	return s.Set(ctx, UserKey(user.ID), user)
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Warnings == nil {
		user.Warnings = []models.Warning{}
	}
	if user.Broadcasts == nil {
		user.Broadcasts = []models.Broadcast{}
	}
	if err := s.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the user record together with their schedule and device tokens.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	for _, key := range []string{UserKey(userID), ScheduleKey(userID), DeviceTokensKey(userID)} {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// ListUsers returns all users ordered by creation time, newest first.
func (s *Store) ListUsers(ctx context.Context) []models.User {
	return sortUsers(Scan[models.User](ctx, s, PrefixUser))
}

// LoadUsers is ListUsers that reports an unreachable backend instead of
// returning an empty list.
func (s *Store) LoadUsers(ctx context.Context) ([]models.User, error) {
	entries, err := LoadScan[models.User](ctx, s, PrefixUser)
	if err != nil {
		return nil, err
	}
	return sortUsers(entries), nil
}

func sortUsers(entries []Entry[models.User]) []models.User {
	users := make([]models.User, 0, len(entries))
	for _, entry := range entries {
		users = append(users, entry.Value)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, bool) {
	user, ok, err := s.LookupUsername(ctx, username)
	if err != nil {
		return nil, false
	}
	return user, ok
}

// LookupUsername matches usernames case-insensitively and reports a failed
// scan instead of treating the name as free.
func (s *Store) LookupUsername(ctx context.Context, username string) (*models.User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, false, nil
	}
	users, err := s.LoadUsers(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, user := range users {
		if strings.EqualFold(user.Username, username) {
			u := user
			return &u, true, nil
		}
	}
	return nil, false, nil
}
