package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr     string
	GinMode  string
	LogLevel string

	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPath         string
	DBMaxOpenConns int

	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionSecret string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	NATSURL           string
	NATSSubjectPrefix string

	LoginRatePerMinute int
	LoginRateBurst     int

	LegacyPlaintextPasswords bool
}

var defaults = map[string]any{
	"ADDR":                       ":8080",
	"GIN_MODE":                   "debug",
	"LOG_LEVEL":                  "info",
	"DB_DRIVER":                  "sqlite",
	"DB_HOST":                    "localhost",
	"DB_PORT":                    "3306",
	"DB_USER":                    "forum",
	"DB_PASSWORD":                "forumpassword",
	"DB_NAME":                    "forum",
	"DB_PATH":                    "forum.db",
	"DB_MAX_OPEN_CONNS":          10,
	"REDIS_HOST":                 "",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"SESSION_SECRET":             "default-secret-key-change-me",
	"GOOGLE_CLIENT_ID":           "",
	"GOOGLE_CLIENT_SECRET":       "",
	"GOOGLE_CALLBACK_URL":        "http://localhost:8080/auth/google/callback",
	"NATS_URL":                   "",
	"NATS_SUBJECT_PREFIX":        "forum",
	"LOGIN_RATE_PER_MINUTE":      10,
	"LOGIN_RATE_BURST":           5,
	"LEGACY_PLAINTEXT_PASSWORDS": true,
}

// Load reads configuration from the environment, after merging any .env
// files found in the working directory.
func Load(envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		Addr:     v.GetString("ADDR"),
		GinMode:  v.GetString("GIN_MODE"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBPath:         v.GetString("DB_PATH"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		SessionSecret: v.GetString("SESSION_SECRET"),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  v.GetString("GOOGLE_CALLBACK_URL"),

		NATSURL:           v.GetString("NATS_URL"),
		NATSSubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),

		LoginRatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
		LoginRateBurst:     v.GetInt("LOGIN_RATE_BURST"),

		LegacyPlaintextPasswords: v.GetBool("LEGACY_PLAINTEXT_PASSWORDS"),
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// GoogleEnabled reports whether external login is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.IsProduction() && c.SessionSecret == defaults["SESSION_SECRET"] {
		return fmt.Errorf("SESSION_SECRET must be set in release mode")
	}
	if c.LoginRatePerMinute <= 0 || c.LoginRateBurst <= 0 {
		return fmt.Errorf("login rate limit must be positive")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
