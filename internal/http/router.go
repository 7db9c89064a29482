package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"schoolhub/backend/internal/ai"
	"schoolhub/backend/internal/auth"
	"schoolhub/backend/internal/backup"
	"schoolhub/backend/internal/http/handlers"
	"schoolhub/backend/internal/session"
	"schoolhub/backend/internal/store"
)

type API struct {
	Store         *store.Store
	Sessions      *session.Manager
	Pollers       handlers.SnapshotReader
	AuthProvider  auth.Provider
	AI            ai.TextService
	Parser        ai.ScheduleParser
	Notifier      handlers.Pusher
	Backup        backup.Target
	Logger        *slog.Logger
	CORSAllowList []string
}

func (a API) Router() http.Handler {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if a.Backup == nil {
		a.Backup = backup.Disabled{}
	}
	audit := handlers.Auditor{Store: a.Store, Log: logger}

	mux := http.NewServeMux()

	health := handlers.HealthHandler{Store: a.Store}
	mux.HandleFunc("GET /healthz", health.Health)

	authHandler := handlers.AuthHandler{Store: a.Store, Sessions: a.Sessions, Provider: a.AuthProvider, Audit: audit, Log: logger}
	authLimiter := newAuthRateLimiter(30, time.Minute)
	mux.Handle("POST /api/v1/auth/login", withAuthRateLimit(http.HandlerFunc(authHandler.Login), authLimiter))
	mux.Handle("POST /api/v1/auth/token", withAuthRateLimit(http.HandlerFunc(authHandler.TokenLogin), authLimiter))
	mux.Handle("POST /api/v1/auth/register", withAuthRateLimit(http.HandlerFunc(authHandler.Register), authLimiter))

	protected := RequireAuth(a.Sessions, a.Store, logger)

	mux.Handle("POST /api/v1/auth/logout", protected(http.HandlerFunc(authHandler.Logout)))

	meHandler := handlers.MeHandler{Store: a.Store, Audit: audit}
	mux.Handle("GET /api/v1/me", protected(http.HandlerFunc(meHandler.Get)))
	mux.Handle("POST /api/v1/me/password", protected(http.HandlerFunc(meHandler.ChangePassword)))

	scheduleHandler := handlers.ScheduleHandler{Store: a.Store, Parser: a.Parser, Audit: audit, Log: logger}
	mux.Handle("GET /api/v1/schedule", protected(http.HandlerFunc(scheduleHandler.Get)))
	mux.Handle("PUT /api/v1/schedule/periods/{key}", protected(http.HandlerFunc(scheduleHandler.UpdatePeriod)))
	mux.Handle("POST /api/v1/schedule/bulk", protected(http.HandlerFunc(scheduleHandler.Bulk)))
	mux.Handle("POST /api/v1/schedule/copy-day", protected(http.HandlerFunc(scheduleHandler.CopyDay)))
	mux.Handle("POST /api/v1/schedule/periods/{key}/tasks", protected(http.HandlerFunc(scheduleHandler.AddTask)))
	mux.Handle("PUT /api/v1/schedule/periods/{key}/tasks/{taskId}", protected(http.HandlerFunc(scheduleHandler.UpdateTask)))
	mux.Handle("POST /api/v1/schedule/periods/{key}/tasks/{taskId}/complete", protected(http.HandlerFunc(scheduleHandler.CompleteTask)))
	mux.Handle("DELETE /api/v1/schedule/periods/{key}/tasks/{taskId}", protected(http.HandlerFunc(scheduleHandler.DeleteTask)))
	mux.Handle("POST /api/v1/schedule/import-image", protected(http.HandlerFunc(scheduleHandler.ImportImage)))

	noticesHandler := handlers.NoticesHandler{Store: a.Store, Pollers: a.Pollers}
	mux.Handle("GET /api/v1/notices/current", protected(http.HandlerFunc(noticesHandler.Current)))
	mux.Handle("GET /api/v1/notices", protected(http.HandlerFunc(noticesHandler.List)))
	mux.Handle("POST /api/v1/notices/{kind}/{id}/ack", protected(http.HandlerFunc(noticesHandler.Acknowledge)))

	broadcastsHandler := handlers.BroadcastsHandler{Store: a.Store, Notifier: a.Notifier, Audit: audit, Log: logger}
	mux.Handle("POST /api/v1/broadcasts", protected(http.HandlerFunc(broadcastsHandler.Create)))
	mux.Handle("GET /api/v1/broadcasts/history", protected(http.HandlerFunc(broadcastsHandler.History)))

	communityHandler := handlers.CommunityHandler{Store: a.Store, Audit: audit}
	mux.Handle("GET /api/v1/community/posts", protected(http.HandlerFunc(communityHandler.List)))
	mux.Handle("POST /api/v1/community/posts", protected(http.HandlerFunc(communityHandler.Create)))
	mux.Handle("POST /api/v1/community/posts/{id}/moderate", protected(http.HandlerFunc(communityHandler.Moderate)))

	eventsHandler := handlers.EventsHandler{Store: a.Store, Audit: audit}
	mux.Handle("GET /api/v1/assessment-events", protected(http.HandlerFunc(eventsHandler.List)))
	mux.Handle("POST /api/v1/assessment-events", protected(http.HandlerFunc(eventsHandler.Create)))
	mux.Handle("POST /api/v1/assessment-events/{id}/moderate", protected(http.HandlerFunc(eventsHandler.Moderate)))

	aiHandler := handlers.AIHandler{Store: a.Store, Text: a.AI}
	mux.Handle("POST /api/v1/ai/chat", protected(http.HandlerFunc(aiHandler.Chat)))

	devicesHandler := handlers.DevicesHandler{Store: a.Store}
	mux.Handle("POST /api/v1/devices/token", protected(http.HandlerFunc(devicesHandler.RegisterToken)))

	usersHandler := handlers.UsersHandler{Store: a.Store, Sessions: a.Sessions, Notifier: a.Notifier, Audit: audit, Log: logger}
	mux.Handle("GET /api/v1/admin/users", protected(http.HandlerFunc(usersHandler.List)))
	mux.Handle("POST /api/v1/admin/users/{id}/ban", protected(http.HandlerFunc(usersHandler.Ban)))
	mux.Handle("POST /api/v1/admin/users/{id}/unban", protected(http.HandlerFunc(usersHandler.Unban)))
	mux.Handle("POST /api/v1/admin/users/{id}/role", protected(http.HandlerFunc(usersHandler.UpdateRole)))
	mux.Handle("POST /api/v1/admin/users/{id}/warnings", protected(http.HandlerFunc(usersHandler.IssueWarning)))
	mux.Handle("POST /api/v1/admin/users/{id}/approve", protected(http.HandlerFunc(usersHandler.Approve)))
	mux.Handle("POST /api/v1/admin/users/{id}/password", protected(http.HandlerFunc(usersHandler.ResetPassword)))
	mux.Handle("DELETE /api/v1/admin/users/{id}", protected(http.HandlerFunc(usersHandler.Delete)))

	flagsHandler := handlers.FlagsHandler{Store: a.Store, Audit: audit}
	mux.Handle("GET /api/v1/flags", protected(http.HandlerFunc(flagsHandler.Get)))
	mux.Handle("GET /api/v1/admin/flags", protected(http.HandlerFunc(flagsHandler.Get)))
	mux.Handle("PUT /api/v1/admin/flags", protected(http.HandlerFunc(flagsHandler.Update)))

	recordsHandler := handlers.RecordsHandler{Store: a.Store}
	mux.Handle("GET /api/v1/admin/records", protected(http.HandlerFunc(recordsHandler.List)))
	mux.Handle("DELETE /api/v1/admin/records", protected(http.HandlerFunc(recordsHandler.Delete)))

	dataHandler := handlers.DataHandler{Store: a.Store, Target: a.Backup, Audit: audit, Log: logger}
	mux.Handle("GET /api/v1/admin/export", protected(http.HandlerFunc(dataHandler.Export)))
	mux.Handle("POST /api/v1/admin/import", protected(http.HandlerFunc(dataHandler.Import)))
	mux.Handle("POST /api/v1/admin/backup", protected(http.HandlerFunc(dataHandler.Backup)))

	return withRequestLog(withCORS(mux, a.CORSAllowList), logger)
}
