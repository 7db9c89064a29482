package store

import (
	"context"

	"schoolhub/backend/internal/models"
)

var defaultSubjects = []string{
	"Math", "English", "Science", "History", "Geography", "Art", "Music", "Physical Education", "Computer Science",
}

var defaultTeachers = []models.Teacher{
	{ID: "t-math", Name: "Ms. Adams", Room: "101", Subjects: []string{"Math"}},
	{ID: "t-english", Name: "Mr. Brooks", Room: "102", Subjects: []string{"English"}},
	{ID: "t-science", Name: "Dr. Chen", Room: "Lab 1", Subjects: []string{"Science"}},
	{ID: "t-history", Name: "Mrs. Diaz", Room: "204", Subjects: []string{"History", "Geography"}},
}

// Seed writes first-run defaults for records that do not exist yet. admin is
// created when non-nil and no admin account is stored.
func (s *Store) Seed(ctx context.Context, admin *models.User) error {
	defaults := []struct {
		key   string
		value interface{}
	}{
		{KeySubjects, defaultSubjects},
		{KeyTeachers, defaultTeachers},
		{KeyFeatureFlags, models.DefaultFeatureFlags()},
	}
	for _, d := range defaults {
		_, ok, err := s.getRaw(ctx, d.key)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.Set(ctx, d.key, d.value); err != nil {
			return err
		}
		s.log.Info("seeded default record", "key", d.key)
	}
	if admin == nil {
		return nil
	}
	users, err := s.LoadUsers(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		if user.Role == models.RoleAdmin {
			return nil
		}
	}
	created, err := s.CreateUser(ctx, *admin)
	if err != nil {
		return err
	}
	s.log.Info("created bootstrap admin", "user_id", created.ID, "username", created.Username)
	return nil
}
