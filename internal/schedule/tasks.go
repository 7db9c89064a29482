package schedule

import (
	"sort"

	"schoolhub/backend/internal/models"
)

// LogicalTask is one task as the user sees it, with every period it is copied into.
type LogicalTask struct {
	Task    models.Task `json:"task"`
	Subject string      `json:"subject"`
	Periods []string    `json:"periods"`
}

// LogicalTasks collapses the per-period copies of a task into one entry. Copies
// are matched by subject and task id. The first copy in key order wins.
func LogicalTasks(m models.ScheduleMap) []LogicalTask {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	index := map[[2]string]int{}
	var out []LogicalTask
	for _, key := range keys {
		period := m[key]
		for _, task := range period.Tasks {
			id := [2]string{period.Subject, task.ID}
			if i, ok := index[id]; ok && period.Subject != "" {
				out[i].Periods = append(out[i].Periods, key)
				continue
			}
			index[id] = len(out)
			out = append(out, LogicalTask{Task: task, Subject: period.Subject, Periods: []string{key}})
		}
	}
	return out
}

// Violations lists subjects whose occurrences disagree on teacher, room or
// tasks. An empty result means the schedule is consistent.
func Violations(m models.ScheduleMap) []string {
	first := map[string]models.ClassPeriod{}
	bad := map[string]bool{}
	for _, period := range m {
		if period.Subject == "" {
			continue
		}
		ref, ok := first[period.Subject]
		if !ok {
			first[period.Subject] = period
			continue
		}
		if !consistent(ref, period) {
			bad[period.Subject] = true
		}
	}
	out := make([]string, 0, len(bad))
	for subject := range bad {
		out = append(out, subject)
	}
	sort.Strings(out)
	return out
}

func consistent(a, b models.ClassPeriod) bool {
	if a.TeacherID != b.TeacherID || a.TeacherName != b.TeacherName || a.Room != b.Room {
		return false
	}
	if len(a.Tasks) != len(b.Tasks) {
		return false
	}
	for i := range a.Tasks {
		if a.Tasks[i] != b.Tasks[i] {
			return false
		}
	}
	return true
}
