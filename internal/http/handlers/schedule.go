package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"schoolhub/backend/internal/ai"
	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/schedule"
	"schoolhub/backend/internal/store"
)

type ScheduleHandler struct {
	Store  *store.Store
	Parser ai.ScheduleParser
	Audit  Auditor
	Log    *slog.Logger
}

type periodRequest struct {
	Subject     string        `json:"subject"`
	TeacherID   string        `json:"teacherId"`
	TeacherName string        `json:"teacherName"`
	Room        string        `json:"room"`
	Tasks       []models.Task `json:"tasks" validate:"dive"`
}

type bulkRequest struct {
	Periods map[string]schedule.PeriodUpdate `json:"periods" validate:"required"`
}

type copyDayRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

type completeTaskRequest struct {
	Completed *bool `json:"completed"`
}

type importImageRequest struct {
	Image    string `json:"image" validate:"required,base64"`
	MimeType string `json:"mimeType" validate:"required"`
}

type scheduleResponse struct {
	UserID       string                 `json:"userId"`
	Schedule     models.ScheduleMap     `json:"schedule"`
	LogicalTasks []schedule.LogicalTask `json:"logicalTasks"`
}

func (h ScheduleHandler) respond(w http.ResponseWriter, status int, userID string, m models.ScheduleMap) {
	tasks := schedule.LogicalTasks(m)
	if tasks == nil {
		tasks = []schedule.LogicalTask{}
	}
	writeJSON(w, status, scheduleResponse{UserID: userID, Schedule: m, LogicalTasks: tasks})
}

// Get returns the caller's schedule. Admins may read another user's schedule
// with ?user=<id>.
func (h ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	target := user.ID
	if other := strings.TrimSpace(r.URL.Query().Get("user")); other != "" && other != user.ID {
		if !isAdmin(user) {
			writeError(w, http.StatusForbidden, "admin required")
			return
		}
		if _, ok := h.Store.GetUser(r.Context(), other); !ok {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		target = other
	}
	h.respond(w, http.StatusOK, target, h.Store.GetSchedule(r.Context(), target))
}

// save persists next for the caller and writes the schedule_update record.
func (h ScheduleHandler) save(w http.ResponseWriter, r *http.Request, user *models.User, next models.ScheduleMap, details map[string]interface{}) {
	if err := h.Store.SaveSchedule(r.Context(), user.ID, next); err != nil {
		h.Log.Warn("schedule write failed", "user_id", user.ID, "err", err)
		writeStoreError(w, err, "failed to save schedule")
		return
	}
	h.Audit.Record(r.Context(), user, models.ActionScheduleUpdate, user.ID, details)
	h.respond(w, http.StatusOK, user.ID, next)
}

// load reads the caller's schedule before an edit. A failed read writes the
// error response so the edit is never applied to an empty schedule.
func (h ScheduleHandler) load(w http.ResponseWriter, r *http.Request, userID string) (models.ScheduleMap, bool) {
	current, err := h.Store.LoadSchedule(r.Context(), userID)
	if err != nil {
		h.Log.Warn("schedule read failed", "user_id", userID, "err", err)
		writeStoreError(w, err, "failed to read schedule")
		return nil, false
	}
	return current, true
}

func periodKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.PathValue("key")
	if !schedule.ValidKey(key) {
		writeError(w, http.StatusBadRequest, "invalid period key")
		return "", false
	}
	return key, true
}

func (h ScheduleHandler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key, ok := periodKey(w, r)
	if !ok {
		return
	}
	var req periodRequest
	if !decodeValid(w, r, &req) {
		return
	}
	current, ok := h.load(w, r, user.ID)
	if !ok {
		return
	}
	tasks := req.Tasks
	if tasks == nil {
		// An omitted task list keeps the slot's tasks.
		tasks = current[key].Tasks
	}
	next := schedule.ApplySingleEdit(current, key, models.ClassPeriod{
		Subject:     req.Subject,
		TeacherID:   req.TeacherID,
		TeacherName: req.TeacherName,
		Room:        req.Room,
		Tasks:       tasks,
	})
	h.save(w, r, user, next, map[string]interface{}{"period": key, "subject": req.Subject})
}

func (h ScheduleHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req bulkRequest
	if !decodeValid(w, r, &req) {
		return
	}
	for key := range req.Periods {
		if !schedule.ValidKey(key) {
			writeError(w, http.StatusBadRequest, "invalid period key "+key)
			return
		}
	}
	current, ok := h.load(w, r, user.ID)
	if !ok {
		return
	}
	next := schedule.ApplyBulkMerge(current, req.Periods)
	h.save(w, r, user, next, map[string]interface{}{"bulk": len(req.Periods)})
}

func (h ScheduleHandler) CopyDay(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req copyDayRequest
	if !decodeValid(w, r, &req) {
		return
	}
	from, to := schedule.NormalizeDay(req.From), schedule.NormalizeDay(req.To)
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "invalid day")
		return
	}
	current, ok := h.load(w, r, user.ID)
	if !ok {
		return
	}
	next := schedule.CopyDay(current, from, to)
	h.save(w, r, user, next, map[string]interface{}{"copy_from": from, "copy_to": to})
}

func (h ScheduleHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key, ok := periodKey(w, r)
	if !ok {
		return
	}
	var task models.Task
	if !decodeValid(w, r, &task) {
		return
	}
	current, ok := h.load(w, r, user.ID)
	if !ok {
		return
	}
	period, ok := current[key]
	if !ok || period.Subject == "" {
		writeError(w, http.StatusConflict, "tasks need a period with a subject")
		return
	}
	task = normalizeTask(task, user, period.Subject)
	next := schedule.AddTask(current, key, task)
	h.save(w, r, user, next, map[string]interface{}{"period": key, "task_added": task.ID})
}

func (h ScheduleHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key, ok := periodKey(w, r)
	if !ok {
		return
	}
	var task models.Task
	if !decodeValid(w, r, &task) {
		return
	}
	current, ok := h.load(w, r, user.ID)
	if !ok {
		return
	}
	task.ID = r.PathValue("taskId")
	task = normalizeTask(task, user, current[key].Subject)
	next, found := schedule.UpdateTask(current, key, task)
	if !found {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	h.save(w, r, user, next, map[string]interface{}{"period": key, "task_updated": task.ID})
}

func (h ScheduleHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key, ok := periodKey(w, r)
	if !ok {
		return
	}
	completed := true
	if r.ContentLength != 0 {
		var req completeTaskRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Completed != nil {
			completed = *req.Completed
		}
	}
	taskID := r.PathValue("taskId")
	current, ok := h.load(w, r, user.ID)
	if !ok {
		return
	}
	next, found := schedule.SetTaskCompleted(current, key, taskID, completed)
	if !found {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	h.save(w, r, user, next, map[string]interface{}{"period": key, "task_completed": taskID})
}

func (h ScheduleHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key, ok := periodKey(w, r)
	if !ok {
		return
	}
	taskID := r.PathValue("taskId")
	current, ok := h.load(w, r, user.ID)
	if !ok {
		return
	}
	next := schedule.DeleteTask(current, key, taskID)
	h.save(w, r, user, next, map[string]interface{}{"period": key, "task_deleted": taskID})
}

// ImportImage reads a timetable photo through the schedule parser and merges
// the recognised slots into the caller's schedule.
func (h ScheduleHandler) ImportImage(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.Store.FeatureFlags(r.Context()).AIFeatures || h.Parser == nil {
		writeError(w, http.StatusForbidden, "AI features are disabled")
		return
	}
	var req importImageRequest
	if !decodeValid(w, r, &req) {
		return
	}
	parsed, err := h.Parser.Parse(r.Context(), req.Image, req.MimeType)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			writeError(w, http.StatusServiceUnavailable, "AI service not configured")
			return
		}
		h.Log.Warn("schedule image parse failed", "user_id", user.ID, "err", err)
		writeError(w, http.StatusBadGateway, "could not read the timetable image")
		return
	}
	updates, skipped := schedule.FromParsed(parsed, h.Store.Teachers(r.Context()))
	current, ok := h.load(w, r, user.ID)
	if !ok {
		return
	}
	next := schedule.ApplyBulkMerge(current, updates)
	if err := h.Store.SaveSchedule(r.Context(), user.ID, next); err != nil {
		writeStoreError(w, err, "failed to save schedule")
		return
	}
	h.Audit.Record(r.Context(), user, models.ActionScheduleUpdate, user.ID, map[string]interface{}{
		"imported": len(updates),
		"skipped":  skipped,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schedule": next,
		"imported": len(updates),
		"skipped":  skipped,
	})
}

func normalizeTask(task models.Task, user *models.User, subject string) models.Task {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Category == "" {
		task.Category = models.CategoryOthers
	}
	if task.Source == "" {
		task.Source = models.SourceStudent
		if user.Role == models.RoleTeacher {
			task.Source = models.SourceTeacher
		}
	}
	task.Subject = subject
	return task
}
