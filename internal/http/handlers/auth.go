package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"schoolhub/backend/internal/auth"
	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/session"
	"schoolhub/backend/internal/store"
)

type AuthHandler struct {
	Store    *store.Store
	Sessions *session.Manager
	Provider auth.Provider
	Audit    Auditor
	Log      *slog.Logger
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string      `json:"username" validate:"required,min=3,max=32"`
	Password string      `json:"password" validate:"required,min=6"`
	FullName string      `json:"fullName" validate:"required"`
	Role     models.Role `json:"role" validate:"required,oneof=student teacher"`
}

type authSessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

func (h AuthHandler) authenticator() auth.Authenticator {
	return auth.Authenticator{Users: h.Store}
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeValid(w, r, &req) {
		return
	}
	user, err := h.authenticator().Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	h.startSession(w, r, user)
}

// TokenLogin exchanges an identity token from the configured provider for a
// session. The token's email must match an existing username.
func (h AuthHandler) TokenLogin(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		writeError(w, http.StatusNotFound, "token login disabled")
		return
	}
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := h.Provider.Verify(r.Context(), token)
	if err != nil {
		h.Log.Info("identity token rejected", "err", err)
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	user, err := h.authenticator().LoginWithClaims(r.Context(), claims)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	h.startSession(w, r, user)
}

func (h AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	sess, token, err := h.Sessions.Start(*user)
	if err != nil {
		h.Log.Error("session start failed", "user_id", user.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	h.Audit.Record(r.Context(), user, models.ActionLogin, user.ID, nil)
	writeJSON(w, http.StatusOK, authSessionResponse{Token: token, ExpiresAt: sess.ExpiresAt, User: publicUser(*user)})
}

func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	sess := httpctx.SessionFromContext(r.Context())
	if user == nil || sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.Sessions.End(sess.ID)
	h.Audit.Record(r.Context(), user, models.ActionLogout, user.ID, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeValid(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	_, exists, err := h.Store.LookupUsername(r.Context(), req.Username)
	if err != nil {
		writeStoreError(w, err, "failed to register")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	created, err := h.Store.CreateUser(r.Context(), models.User{
		Username:     req.Username,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		Role:         req.Role,
		Approved:     req.Role == models.RoleStudent,
	})
	if err != nil {
		writeStoreError(w, err, "failed to register")
		return
	}
	writeJSON(w, http.StatusCreated, publicUser(*created))
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrBanned):
		writeError(w, http.StatusForbidden, "This account has been banned.")
	case errors.Is(err, auth.ErrNotApproved):
		writeError(w, http.StatusForbidden, "Your teacher account is awaiting admin approval.")
	default:
		writeError(w, http.StatusUnauthorized, "Invalid username or password.")
	}
}

func bearerToken(value string) string {
	const prefix = "Bearer "
	if len(value) <= len(prefix) || value[:len(prefix)] != prefix {
		return ""
	}
	return value[len(prefix):]
}

