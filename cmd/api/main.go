package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schoolhub/backend/internal/ai"
	"schoolhub/backend/internal/auth"
	"schoolhub/backend/internal/backup"
	"schoolhub/backend/internal/config"
	"schoolhub/backend/internal/http"
	"schoolhub/backend/internal/kv"
	"schoolhub/backend/internal/logging"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/notify"
	"schoolhub/backend/internal/poller"
	"schoolhub/backend/internal/session"
	"schoolhub/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, logging.Options{Env: cfg.Env, Level: cfg.LogLevel, RollbarToken: cfg.RollbarToken})
	defer logging.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api exited", "err", err)
		logging.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := kv.Open(ctx, kv.Options{
		Kind:                    cfg.StoreBackend,
		DatabaseURL:             cfg.DatabaseURL,
		SQLitePath:              cfg.SQLitePath,
		RedisAddr:               cfg.RedisAddr,
		RedisPassword:           cfg.RedisPassword,
		RedisDB:                 cfg.RedisDB,
		FirebaseProjectID:       cfg.FirebaseProjectID,
		FirebaseCredentialsFile: cfg.FirebaseCredentialsFile,
	})
	if err != nil {
		return err
	}
	st := store.New(backend, logger)
	defer st.Close()

	if !st.CheckConnection(ctx) {
		logger.Warn("store unreachable at startup; serving defaults until it recovers", "backend", cfg.StoreBackend)
	}
	if err := st.Seed(ctx, bootstrapAdmin(cfg, logger)); err != nil {
		logger.Warn("seeding skipped", "err", err)
	}

	var provider auth.Provider
	switch cfg.AuthMode {
	case "dev":
		provider = auth.DevProvider{}
	case "firebase":
		provider, err = auth.NewFirebaseProvider(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			return err
		}
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}
	pollers := poller.NewRegistry(st, cfg.PollInterval, logger)
	sessions := session.NewManager(secret, cfg.SessionTTL, pollers)
	defer pollers.StopAll()

	aiClient := ai.NewClient(cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL, logger)
	if !aiClient.Enabled() {
		logger.Info("AI_API_KEY not set; assistant replies fall back and image import is disabled")
	}

	sender, err := notify.NewFirebaseSender(ctx, cfg.FirebaseCredentialsFile)
	if err != nil {
		return err
	}

	backups, err := backup.Open(ctx, backup.Options{S3Bucket: cfg.BackupS3Bucket, S3Region: cfg.BackupS3Region, Dir: cfg.BackupDir})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.API{
			Store:         st,
			Sessions:      sessions,
			Pollers:       pollers,
			AuthProvider:  provider,
			AI:            aiClient,
			Parser:        aiClient,
			Notifier:      notify.New(st, sender),
			Backup:        backups,
			Logger:        logger,
			CORSAllowList: cfg.CORSAllowList,
		}.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("schoolhub api listening", "addr", cfg.HTTPAddr, "store", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// bootstrapAdmin is the account created when the store holds no admin yet.
func bootstrapAdmin(cfg config.Config, logger *slog.Logger) *models.User {
	if cfg.AdminPassword == "" {
		logger.Info("ADMIN_PASSWORD not set; no bootstrap admin will be created")
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		logger.Error("hash bootstrap admin password", "err", err)
		return nil
	}
	return &models.User{
		Username:     cfg.AdminUsername,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Approved:     true,
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
