package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub/backend/internal/auth"
	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/notify"
	"schoolhub/backend/internal/store"
)

// SessionEnder ends every live session of a user.
type SessionEnder interface {
	EndUser(userID string) int
}

// UsersHandler is the admin console's user management.
type UsersHandler struct {
	Store    *store.Store
	Sessions SessionEnder
	Notifier Pusher
	Audit    Auditor
	Log      *slog.Logger
}

type updateUserRoleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=student teacher admin secondary_admin"`
}

type issueWarningRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (h UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if !isAdmin(user) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}
	role := models.Role(r.URL.Query().Get("role"))
	users := h.Store.ListUsers(r.Context())
	if role != "" {
		filtered := users[:0]
		for _, u := range users {
			if u.Role == role {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	writeJSON(w, http.StatusOK, publicUsers(users))
}

// target loads the user named in the path and checks that the caller may
// manage them. Only a full admin may act on admin accounts, and nobody acts on
// themselves through the console.
func (h UsersHandler) target(w http.ResponseWriter, r *http.Request) (*models.User, *models.User, bool) {
	actor := httpctx.UserFromContext(r.Context())
	if !isAdmin(actor) {
		writeError(w, http.StatusForbidden, "admin required")
		return nil, nil, false
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return nil, nil, false
	}
	if id == actor.ID {
		writeError(w, http.StatusBadRequest, "cannot modify your own account here")
		return nil, nil, false
	}
	target, ok, err := h.Store.LoadUser(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "failed to load user")
		return nil, nil, false
	}
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return nil, nil, false
	}
	if target.Role.IsAdmin() && actor.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "only an admin may manage admin accounts")
		return nil, nil, false
	}
	return actor, target, true
}

func (h UsersHandler) saveTarget(w http.ResponseWriter, r *http.Request, target models.User, message string) bool {
	if err := h.Store.SaveUser(r.Context(), target); err != nil {
		writeStoreError(w, err, message)
		return false
	}
	return true
}

func (h UsersHandler) Ban(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.target(w, r)
	if !ok {
		return
	}
	target.Banned = true
	if !h.saveTarget(w, r, *target, "failed to ban user") {
		return
	}
	ended := h.Sessions.EndUser(target.ID)
	h.Audit.Record(r.Context(), actor, models.ActionUserBan, target.ID, map[string]interface{}{"sessions_ended": ended})
	writeJSON(w, http.StatusOK, publicUser(*target))
}

func (h UsersHandler) Unban(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.target(w, r)
	if !ok {
		return
	}
	target.Banned = false
	if !h.saveTarget(w, r, *target, "failed to unban user") {
		return
	}
	h.Audit.Record(r.Context(), actor, models.ActionUserUnban, target.ID, nil)
	writeJSON(w, http.StatusOK, publicUser(*target))
}

func (h UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.target(w, r)
	if !ok {
		return
	}
	var req updateUserRoleRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.Role.IsAdmin() && actor.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "only an admin may grant admin roles")
		return
	}
	previous := target.Role
	target.Role = req.Role
	if req.Role != models.RoleTeacher {
		target.Approved = true
	}
	if !h.saveTarget(w, r, *target, "failed to update role") {
		return
	}
	h.Audit.Record(r.Context(), actor, models.ActionRoleChange, target.ID, map[string]interface{}{
		"from": previous,
		"to":   req.Role,
	})
	writeJSON(w, http.StatusOK, publicUser(*target))
}

func (h UsersHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.target(w, r)
	if !ok {
		return
	}
	if target.Role != models.RoleTeacher {
		writeError(w, http.StatusBadRequest, "only teacher accounts need approval")
		return
	}
	target.Approved = true
	if !h.saveTarget(w, r, *target, "failed to approve teacher") {
		return
	}
	h.Audit.Record(r.Context(), actor, models.ActionTeacherApprove, target.ID, nil)
	writeJSON(w, http.StatusOK, publicUser(*target))
}

func (h UsersHandler) IssueWarning(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.target(w, r)
	if !ok {
		return
	}
	var req issueWarningRequest
	if !decodeValid(w, r, &req) {
		return
	}
	warning := models.Warning{
		ID:        uuid.NewString(),
		Message:   strings.TrimSpace(req.Message),
		IssuedBy:  actor.Username,
		CreatedAt: time.Now().UTC(),
	}
	target.Warnings = append(target.Warnings, warning)
	if !h.saveTarget(w, r, *target, "failed to issue warning") {
		return
	}
	h.Audit.Record(r.Context(), actor, models.ActionWarningIssued, target.ID, map[string]interface{}{"warning_id": warning.ID})
	if h.Notifier != nil {
		msg := notify.Message{
			Title: "New warning",
			Body:  warning.Message,
			Data:  map[string]string{"type": "warning", "warning_id": warning.ID},
		}
		if err := h.Notifier.NotifyUsers(r.Context(), []string{target.ID}, msg); err != nil {
			h.Log.Warn("push delivery failed", "type", "warning", "err", err)
		}
	}
	writeJSON(w, http.StatusCreated, warning)
}

func (h UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.target(w, r)
	if !ok {
		return
	}
	var req resetPasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	target.PasswordHash = hash
	if !h.saveTarget(w, r, *target, "failed to reset password") {
		return
	}
	h.Sessions.EndUser(target.ID)
	h.Audit.Record(r.Context(), actor, models.ActionPasswordReset, target.ID, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteUser(r.Context(), target.ID); err != nil {
		writeStoreError(w, err, "failed to delete user")
		return
	}
	h.Sessions.EndUser(target.ID)
	h.Audit.Record(r.Context(), actor, models.ActionUserDelete, target.ID, map[string]interface{}{"username": target.Username})
	w.WriteHeader(http.StatusNoContent)
}
