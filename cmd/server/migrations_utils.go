package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
)

// slogGooseLogger adapts the goose logger interface to use slog
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements the goose.Logger Printf method by forwarding messages to slog.Info
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.target().Info(fmt.Sprintf(format, v...))
}

// Fatalf implements the goose.Logger Fatalf method by forwarding error messages to slog.Error
// Note: Unlike the standard Fatalf behavior, this does NOT call os.Exit
// to allow main.go to handle application exit consistently
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.target().Error(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) target() *slog.Logger {
	if l.logger == nil {
		return slog.Default()
	}
	return l.logger
}

// getExecutionMode returns a string describing the execution environment
// This helps with log filtering and diagnostic analysis
func getExecutionMode() string {
	if isCIEnvironment() {
		return "ci"
	}
	return "local"
}

// isCIEnvironment returns true if running in a CI environment
func isCIEnvironment() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}

	if parsedURL.User != nil {
		if _, hasPassword := parsedURL.User.Password(); hasPassword {
			parsedURL.User = url.UserPassword(parsedURL.User.Username(), "****")
		}
		return parsedURL.String()
	}

	return dbURL
}

// extractHostFromURL extracts the hostname from a database URL for logging
func extractHostFromURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "unknown"
	}

	return parsedURL.Hostname()
}

// logDatabaseInfo logs the server version, user and database the migrations run against.
func logDatabaseInfo(ctx context.Context, db *sql.DB, logger *slog.Logger) {
	queries := []struct {
		label string
		query string
	}{
		{"version", "SELECT version()"},
		{"user", "SELECT current_user"},
		{"database", "SELECT current_database()"},
	}

	for _, q := range queries {
		var value string
		if err := db.QueryRowContext(ctx, q.query).Scan(&value); err != nil {
			logger.Warn("Failed to query database information", "field", q.label, "error", err)
			continue
		}
		logger.Info("Database information", q.label, value)
	}
}
