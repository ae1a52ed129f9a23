package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Uploads
		CORS
		UI
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		JWTSecret       string
		JWTExpiry       time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
	Uploads struct {
		Dir             string
		MaxSizeBytes    int64
		CleanupEnabled  bool
		CleanupSchedule string // Cron format: "30 3 * * *" = daily at 03:30
	}
	CORS struct {
		Origins []string
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./public")

	// Auth defaults
	v.SetDefault("session_secret", "")      // Auto-generated if empty
	v.SetDefault("session_lifetime", "24h") // Fixed lifetime from creation
	v.SetDefault("jwt_secret", "")          // Auto-generated if empty
	v.SetDefault("jwt_expiry", "24h")
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("secure_cookies", false)

	// Upload defaults
	v.SetDefault("uploads_dir", "./public/images")
	v.SetDefault("uploads_max_size_bytes", 5*1024*1024)
	v.SetDefault("uploads_cleanup_enabled", true)
	v.SetDefault("uploads_cleanup_schedule", "30 3 * * *")

	// CORS defaults match the local Vite dev servers the frontend runs on
	v.SetDefault("cors_origins", []string{
		"http://localhost:5173",
		"http://localhost:5174",
		"http://localhost:5175",
	})

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("SESSION_SECRET"),
			SessionLifetime: v.GetDuration("SESSION_LIFETIME"),
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTExpiry:       v.GetDuration("JWT_EXPIRY"),
			BcryptCost:      v.GetInt("BCRYPT_COST"),
			SecureCookies:   v.GetBool("SECURE_COOKIES"),
		},
		Uploads: Uploads{
			Dir:             v.GetString("UPLOADS_DIR"),
			MaxSizeBytes:    v.GetInt64("UPLOADS_MAX_SIZE_BYTES"),
			CleanupEnabled:  v.GetBool("UPLOADS_CLEANUP_ENABLED"),
			CleanupSchedule: v.GetString("UPLOADS_CLEANUP_SCHEDULE"),
		},
		CORS: CORS{
			Origins: v.GetStringSlice("CORS_ORIGINS"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
	}
}
