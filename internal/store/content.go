package store

import (
	"context"

	"schoolhub/backend/internal/models"
)

func (s *Store) Teachers(ctx context.Context) []models.Teacher {
	teachers, ok := Get[[]models.Teacher](ctx, s, KeyTeachers)
	if !ok || teachers == nil {
		return []models.Teacher{}
	}
	return teachers
}

func (s *Store) SaveTeachers(ctx context.Context, teachers []models.Teacher) error {
	return s.Set(ctx, KeyTeachers, teachers)
}

func (s *Store) Subjects(ctx context.Context) []string {
	subjects, ok := Get[[]string](ctx, s, KeySubjects)
	if !ok || subjects == nil {
		return []string{}
	}
	return subjects
}

func (s *Store) SaveSubjects(ctx context.Context, subjects []string) error {
	return s.Set(ctx, KeySubjects, subjects)
}

// FeatureFlags falls back to the defaults when the record is missing or unreadable.
func (s *Store) FeatureFlags(ctx context.Context) models.FeatureFlags {
	flags, err := s.LoadFeatureFlags(ctx)
	if err != nil {
		return models.DefaultFeatureFlags()
	}
	return flags
}

// LoadFeatureFlags returns the defaults only when no flags were written yet.
func (s *Store) LoadFeatureFlags(ctx context.Context) (models.FeatureFlags, error) {
	flags, ok, err := Load[models.FeatureFlags](ctx, s, KeyFeatureFlags)
	if err != nil {
		return models.FeatureFlags{}, err
	}
	if !ok {
		return models.DefaultFeatureFlags(), nil
	}
	return flags, nil
}

func (s *Store) SaveFeatureFlags(ctx context.Context, flags models.FeatureFlags) error {
	return s.Set(ctx, KeyFeatureFlags, flags)
}

func (s *Store) CommunityPosts(ctx context.Context) []models.CommunityPost {
	posts, _ := s.LoadCommunityPosts(ctx)
	return posts
}

func (s *Store) LoadCommunityPosts(ctx context.Context) ([]models.CommunityPost, error) {
	posts, _, err := Load[[]models.CommunityPost](ctx, s, KeyCommunityPosts)
	if err != nil || posts == nil {
		return []models.CommunityPost{}, err
	}
	for i := range posts {
		if posts[i].Status == "" {
			posts[i].Status = models.StatusApproved
		}
	}
	return posts, nil
}

func (s *Store) SaveCommunityPosts(ctx context.Context, posts []models.CommunityPost) error {
	return s.Set(ctx, KeyCommunityPosts, posts)
}

func (s *Store) AssessmentEvents(ctx context.Context) []models.AssessmentEvent {
	events, _ := s.LoadAssessmentEvents(ctx)
	return events
}

// LoadAssessmentEvents fills in fields that older records did not carry.
func (s *Store) LoadAssessmentEvents(ctx context.Context) ([]models.AssessmentEvent, error) {
	events, _, err := Load[[]models.AssessmentEvent](ctx, s, KeyAssessmentEvents)
	if err != nil || events == nil {
		return []models.AssessmentEvent{}, err
	}
	for i := range events {
		if events[i].Category == "" {
			events[i].Category = models.CategoryTest
		}
		if events[i].EventType == "" {
			events[i].EventType = "assessment"
		}
		if events[i].Status == "" {
			events[i].Status = models.StatusApproved
		}
	}
	return events, nil
}

func (s *Store) SaveAssessmentEvents(ctx context.Context, events []models.AssessmentEvent) error {
	return s.Set(ctx, KeyAssessmentEvents, events)
}

// PendingModeration counts posts and events waiting for an admin decision.
func PendingModeration(posts []models.CommunityPost, events []models.AssessmentEvent) int {
	count := 0
	for _, post := range posts {
		if post.Status == models.StatusPending {
			count++
		}
	}
	for _, event := range events {
		if event.Status == models.StatusPending {
			count++
		}
	}
	return count
}
