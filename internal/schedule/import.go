package schedule

import (
	"strings"

	"schoolhub/backend/internal/ai"
	"schoolhub/backend/internal/models"
)

// FromParsed turns slots read from a timetable photo into bulk updates.
// Teacher names are matched against the known teachers to fill in the id and,
// when the photo has none, the room. Slots with an unknown day are dropped and
// counted in skipped.
func FromParsed(parsed []ai.ParsedPeriod, teachers []models.Teacher) (map[string]PeriodUpdate, int) {
	byName := make(map[string]models.Teacher, len(teachers))
	for _, t := range teachers {
		byName[strings.ToLower(strings.TrimSpace(t.Name))] = t
	}

	updates := map[string]PeriodUpdate{}
	skipped := 0
	for _, p := range parsed {
		day := NormalizeDay(p.Day)
		if day == "" || p.PeriodIndex < 0 || p.PeriodIndex >= SlotsPerDay {
			skipped++
			continue
		}
		update := PeriodUpdate{
			Subject:     strings.TrimSpace(p.Subject),
			TeacherName: strings.TrimSpace(p.Teacher),
			Room:        strings.TrimSpace(p.Room),
		}
		if t, ok := byName[strings.ToLower(update.TeacherName)]; ok {
			update.TeacherID = t.ID
			update.TeacherName = t.Name
			if update.Room == "" {
				update.Room = t.Room
			}
		}
		updates[PeriodKey(day, p.PeriodIndex)] = update
	}
	return updates, skipped
}
