package di

import (
	"io"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"event_backend/internal/platform/config"
	platformdb "event_backend/internal/platform/db"
)

// NewLogger returns a JSON logger writing to w at the named level
// (debug, info, warn, error). Unknown names fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenDB connects to the configured database.
func OpenDB(c config.DB) (*gorm.DB, error) {
	return platformdb.Open(platformdb.Config{
		Driver:         c.Driver,
		Host:           c.Host,
		Port:           c.Port,
		User:           c.User,
		Password:       c.Password,
		Name:           c.Name,
		SSLMode:        c.SSLMode,
		SQLitePath:     c.SQLitePath,
		ConnectTimeout: c.ConnectTimeout,
	})
}
