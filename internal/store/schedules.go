package store

import (
	"context"
	"strings"

	"schoolhub/backend/internal/models"
)

// GetSchedule returns the user's schedule, or an empty map if none was written
// yet or it cannot be read.
func (s *Store) GetSchedule(ctx context.Context, userID string) models.ScheduleMap {
	schedule, _ := s.LoadSchedule(ctx, userID)
	return schedule
}

// LoadSchedule returns an empty map only when no schedule was written yet. A
// failed read is an error so the schedule is never rebuilt from nothing.
func (s *Store) LoadSchedule(ctx context.Context, userID string) (models.ScheduleMap, error) {
	schedule, _, err := Load[models.ScheduleMap](ctx, s, ScheduleKey(userID))
	if err != nil || schedule == nil {
		return models.ScheduleMap{}, err
	}
	return schedule, nil
}

func (s *Store) SaveSchedule(ctx context.Context, userID string, schedule models.ScheduleMap) error {
	return s.Set(ctx, ScheduleKey(userID), schedule)
}

// ListSchedules returns every stored schedule keyed by user id.
func (s *Store) ListSchedules(ctx context.Context) map[string]models.ScheduleMap {
	out := map[string]models.ScheduleMap{}
	for _, entry := range Scan[models.ScheduleMap](ctx, s, PrefixSchedule) {
		out[strings.TrimPrefix(entry.Key, PrefixSchedule)] = entry.Value
	}
	return out
}
