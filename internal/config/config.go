package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// MySQL holds the relational side: user profiles and friend edges.
	MySQL MySQLConfig `json:"mysql"`

	// MongoDB is the document store: notifications, chats, teams, counters.
	MongoDB MongoDBConfig `json:"mongodb"`

	// Cursor is the local durable watermark store.
	Cursor CursorConfig `json:"cursor"`

	// Notify tunes the fanout engine.
	Notify NotifyConfig `json:"notify"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// MySQLConfig contains the relational database connection configuration.
type MySQLConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// MongoDBConfig contains the document store connection configuration.
type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// CursorConfig locates the sqlite file holding per-user watermarks.
type CursorConfig struct {
	Path string `json:"path"`
}

// NotifyConfig contains fanout engine tuning.
type NotifyConfig struct {
	// WatermarkWindowHours bounds how far back a first-ever listen reaches.
	WatermarkWindowHours int `json:"watermark_window_hours"`
	// VerifySampleSize caps how many fanout writes are read back after commit.
	VerifySampleSize int `json:"verify_sample_size"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, console
}

// Load reads .env if present and assembles the configuration from the
// environment, falling back to development defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MySQL: MySQLConfig{
			Host:         getEnvOrDefault("MYSQL_HOST", "localhost"),
			Port:         getEnvOrDefault("MYSQL_PORT", "3306"),
			Username:     getEnvOrDefault("MYSQL_USER", "thriveup_user"),
			Password:     getEnvOrDefault("MYSQL_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("MYSQL_DATABASE", "thriveup_db"),
			MaxOpenConns: getEnvIntOrDefault("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("MYSQL_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: getEnvOrDefault("MONGO_USERNAME", ""),
			Password: getEnvOrDefault("MONGO_PASSWORD", ""),
			Database: getEnvOrDefault("MONGO_DATABASE", "thriveup"),
		},
		Cursor: CursorConfig{
			Path: getEnvOrDefault("CURSOR_DB_PATH", "cursors.db"),
		},
		Notify: NotifyConfig{
			WatermarkWindowHours: getEnvIntOrDefault("NOTIFY_WATERMARK_WINDOW_HOURS", 24),
			VerifySampleSize:     getEnvIntOrDefault("NOTIFY_VERIFY_SAMPLE_SIZE", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
	}
}

// DSN builds the MySQL connection string from the configured values.
func (cfg *Config) DSN() string {
	if cfg.MySQL.Host == "" {
		cfg.MySQL.Host = "localhost"
	}
	if cfg.MySQL.Port == "" {
		cfg.MySQL.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.MySQL.Username,
		cfg.MySQL.Password,
		cfg.MySQL.Host,
		cfg.MySQL.Port,
		cfg.MySQL.DatabaseName,
	)
}

// MongoURI builds the document store connection string.
func (cfg *Config) MongoURI() string {
	if cfg.MongoDB.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s",
			cfg.MongoDB.Username,
			cfg.MongoDB.Password,
			cfg.MongoDB.Host,
			cfg.MongoDB.Port,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s", cfg.MongoDB.Host, cfg.MongoDB.Port)
}

// WatermarkWindow returns the first-listen lookback in hours.
func (cfg *Config) WatermarkWindow() int {
	if cfg.Notify.WatermarkWindowHours <= 0 {
		return 24
	}
	return cfg.Notify.WatermarkWindowHours
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
