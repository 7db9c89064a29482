package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	StoreBackend  string
	DatabaseURL   string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthMode                string
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	SessionSecret string
	SessionTTL    time.Duration
	PollInterval  time.Duration

	AIAPIKey  string
	AIModel   string
	AIBaseURL string

	BackupS3Bucket string
	BackupS3Region string
	BackupDir      string

	RollbarToken  string
	CORSAllowList []string

	AdminUsername string
	AdminPassword string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", "memory")
	v.SetDefault("SQLITE_PATH", "schoolhub.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("AUTH_MODE", "password")
	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("POLL_INTERVAL", 10*time.Second)
	v.SetDefault("AI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("BACKUP_S3_REGION", "us-east-1")
	v.SetDefault("CORS_ALLOW_LIST", "http://localhost:5173")
	v.SetDefault("ADMIN_USERNAME", "admin")
}

// Load reads configuration from the environment, with values from .env filling
// any variable that is not already set.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	defaults(v)
	v.AutomaticEnv()

	cfg := Config{
		Env:                     v.GetString("APP_ENV"),
		HTTPAddr:                v.GetString("HTTP_ADDR"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		StoreBackend:            strings.ToLower(v.GetString("STORE_BACKEND")),
		DatabaseURL:             v.GetString("DATABASE_URL"),
		SQLitePath:              v.GetString("SQLITE_PATH"),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		RedisPassword:           v.GetString("REDIS_PASSWORD"),
		RedisDB:                 v.GetInt("REDIS_DB"),
		AuthMode:                strings.ToLower(v.GetString("AUTH_MODE")),
		FirebaseProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
		SessionSecret:           v.GetString("SESSION_SECRET"),
		SessionTTL:              v.GetDuration("SESSION_TTL"),
		PollInterval:            v.GetDuration("POLL_INTERVAL"),
		AIAPIKey:                v.GetString("AI_API_KEY"),
		AIModel:                 v.GetString("AI_MODEL"),
		AIBaseURL:               v.GetString("AI_BASE_URL"),
		BackupS3Bucket:          v.GetString("BACKUP_S3_BUCKET"),
		BackupS3Region:          v.GetString("BACKUP_S3_REGION"),
		BackupDir:               v.GetString("BACKUP_DIR"),
		RollbarToken:            v.GetString("ROLLBAR_TOKEN"),
		CORSAllowList:           splitList(v.GetString("CORS_ALLOW_LIST")),
		AdminUsername:           v.GetString("ADMIN_USERNAME"),
		AdminPassword:           v.GetString("ADMIN_PASSWORD"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SessionSecret == "" {
		if c.IsProduction() {
			return errors.New("SESSION_SECRET is required in production")
		}
	}
	if c.SessionTTL <= 0 {
		return errors.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.PollInterval <= 0 {
		return errors.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	switch c.AuthMode {
	case "password", "dev", "firebase":
	default:
		return errors.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat %s", path)
	}
	// godotenv.Load never overrides variables already present in the environment.
	return errors.Wrapf(godotenv.Load(path), "load %s", path)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
