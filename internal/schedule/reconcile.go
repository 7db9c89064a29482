// Package schedule holds the pure functions that edit a weekly schedule.
//
// Periods whose non-empty subjects are textually equal are one course: an edit
// to any of them rewrites teacher, room and tasks on every occurrence. Subject
// comparison is exact and case-sensitive, so "Math" and "math " are two courses.
// None of the functions mutate their input; persisting the result is up to the caller.
package schedule

import (
	"schoolhub/backend/internal/models"
)

// PeriodUpdate is one entry of a bulk write. A nil Tasks keeps the tasks
// already on the slot; a non-nil slice, even empty, replaces them.
type PeriodUpdate struct {
	Subject     string        `json:"subject"`
	TeacherID   string        `json:"teacherId,omitempty"`
	TeacherName string        `json:"teacherName,omitempty"`
	Room        string        `json:"room,omitempty"`
	Tasks       []models.Task `json:"tasks"`
}

func sameCourse(a, b string) bool {
	return a != "" && a == b
}

// Clone deep-copies m, including task slices.
func Clone(m models.ScheduleMap) models.ScheduleMap {
	out := make(models.ScheduleMap, len(m))
	for key, period := range m {
		period.Tasks = copyTasks(period.Tasks)
		out[key] = period
	}
	return out
}

func copyTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}

// ApplySingleEdit stores edited under key and copies its teacher, room and
// tasks onto every other period with the same subject. Clearing a subject only
// affects the edited slot.
func ApplySingleEdit(current models.ScheduleMap, key string, edited models.ClassPeriod) models.ScheduleMap {
	out := Clone(current)
	edited.Tasks = copyTasks(edited.Tasks)
	out[key] = edited

	if edited.Subject == "" {
		return out
	}
	for otherKey, period := range out {
		if otherKey == key || !sameCourse(period.Subject, edited.Subject) {
			continue
		}
		period.TeacherName = edited.TeacherName
		period.TeacherID = edited.TeacherID
		period.Room = edited.Room
		period.Tasks = copyTasks(edited.Tasks)
		out[otherKey] = period
	}
	return out
}

// ApplyBulkMerge merges incoming slot by slot. It does not propagate across
// same-subject periods.
func ApplyBulkMerge(current models.ScheduleMap, incoming map[string]PeriodUpdate) models.ScheduleMap {
	out := Clone(current)
	for key, update := range incoming {
		period := out[key]
		if update.Subject != "" {
			period.Subject = update.Subject
			period.TeacherID = update.TeacherID
			period.TeacherName = update.TeacherName
			period.Room = update.Room
		} else {
			period.Subject = ""
			period.TeacherID = ""
			period.TeacherName = ""
			period.Room = ""
		}
		if update.Tasks != nil {
			period.Tasks = copyTasks(update.Tasks)
		} else if period.Tasks == nil {
			period.Tasks = []models.Task{}
		}
		out[key] = period
	}
	return out
}

// CopyDay copies subject, teacher and room of every slot of fromDay onto
// toDay. Copied slots start with no tasks; empty source slots clear the target.
func CopyDay(current models.ScheduleMap, fromDay, toDay string) models.ScheduleMap {
	out := Clone(current)
	if fromDay == toDay {
		return out
	}
	for slot := 0; slot < SlotsPerDay; slot++ {
		src, ok := current[PeriodKey(fromDay, slot)]
		dst := PeriodKey(toDay, slot)
		if !ok {
			delete(out, dst)
			continue
		}
		out[dst] = models.ClassPeriod{
			Subject:     src.Subject,
			TeacherID:   src.TeacherID,
			TeacherName: src.TeacherName,
			Room:        src.Room,
			Tasks:       []models.Task{},
		}
	}
	return out
}

// DeleteTask removes taskID from the named period only. Copies of the task on
// other same-subject periods stay in place.
func DeleteTask(current models.ScheduleMap, key, taskID string) models.ScheduleMap {
	out := Clone(current)
	period, ok := out[key]
	if !ok {
		return out
	}
	kept := make([]models.Task, 0, len(period.Tasks))
	for _, task := range period.Tasks {
		if task.ID != taskID {
			kept = append(kept, task)
		}
	}
	period.Tasks = kept
	out[key] = period
	return out
}

// AddTask appends task to the named period and propagates the new task list
// to the rest of the course.
func AddTask(current models.ScheduleMap, key string, task models.Task) models.ScheduleMap {
	period := current[key]
	tasks := append(copyTasks(period.Tasks), task)
	period.Tasks = tasks
	return ApplySingleEdit(current, key, period)
}

// UpdateTask replaces the task with the same id on the named period and
// propagates like ApplySingleEdit. It reports false when the task is not there.
func UpdateTask(current models.ScheduleMap, key string, task models.Task) (models.ScheduleMap, bool) {
	period, ok := current[key]
	if !ok {
		return Clone(current), false
	}
	tasks := copyTasks(period.Tasks)
	found := false
	for i := range tasks {
		if tasks[i].ID == task.ID {
			tasks[i] = task
			found = true
			break
		}
	}
	if !found {
		return Clone(current), false
	}
	period.Tasks = tasks
	return ApplySingleEdit(current, key, period), true
}

// SetTaskCompleted flips the completion flag on the named period only.
func SetTaskCompleted(current models.ScheduleMap, key, taskID string, completed bool) (models.ScheduleMap, bool) {
	out := Clone(current)
	period, ok := out[key]
	if !ok {
		return out, false
	}
	for i := range period.Tasks {
		if period.Tasks[i].ID == taskID {
			period.Tasks[i].Completed = completed
			out[key] = period
			return out, true
		}
	}
	return out, false
}
