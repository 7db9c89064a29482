package schedule

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"schoolhub/backend/internal/models"
)

var subjectPool = []string{"", "Math", "Art", "History"}

var genSubject = gen.IntRange(0, len(subjectPool)-1).Map(func(i int) string { return subjectPool[i] })

func genSchedule() gopter.Gen {
	return gen.SliceOfN(SlotsPerDay*len(Days), genSubject).Map(func(subjects []string) models.ScheduleMap {
		m := models.ScheduleMap{}
		for i, subject := range subjects {
			if subject == "" {
				continue
			}
			key := PeriodKey(Days[i/SlotsPerDay], i%SlotsPerDay)
			m[key] = models.ClassPeriod{Subject: subject, TeacherName: "T-" + subject, Tasks: []models.Task{}}
		}
		return m
	})
}

func TestApplySingleEdit_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("applying the same edit twice equals applying it once", prop.ForAll(
		func(m models.ScheduleMap, day, slot int, subject, teacher string) bool {
			key := PeriodKey(Days[day], slot)
			edited := models.ClassPeriod{Subject: subject, TeacherName: teacher, Room: "R", Tasks: []models.Task{{ID: "x"}}}
			once := ApplySingleEdit(m, key, edited)
			twice := ApplySingleEdit(once, key, edited)
			return reflect.DeepEqual(once, twice)
		},
		genSchedule(),
		gen.IntRange(0, len(Days)-1),
		gen.IntRange(0, SlotsPerDay-1),
		genSubject,
		gen.AlphaString(),
	))

	properties.Property("every occurrence of the edited subject ends up consistent", prop.ForAll(
		func(m models.ScheduleMap, day, slot int, subject string) bool {
			if subject == "" {
				return true
			}
			key := PeriodKey(Days[day], slot)
			out := ApplySingleEdit(m, key, models.ClassPeriod{Subject: subject, TeacherName: "New", Room: "9"})
			for _, period := range out {
				if period.Subject == subject && (period.TeacherName != "New" || period.Room != "9") {
					return false
				}
			}
			return true
		},
		genSchedule(),
		gen.IntRange(0, len(Days)-1),
		gen.IntRange(0, SlotsPerDay-1),
		genSubject,
	))

	properties.TestingRun(t)
}
