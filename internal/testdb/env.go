//go:build integration

package testdb

import "os"

// Environment variables consulted for server URLs, in order of preference.
var (
	postgresURLVars = []string{"SHAREPLATE_TEST_DB_URL", "DATABASE_URL"}
	mongoURLVars    = []string{"SHAREPLATE_TEST_MONGODB_URL", "MONGODB_URL"}
)

// GetTestDatabaseURL returns the PostgreSQL URL for integration tests, or "".
func GetTestDatabaseURL() string {
	return firstEnv(postgresURLVars)
}

// GetTestMongoURL returns the MongoDB URL for integration tests, or "".
func GetTestMongoURL() string {
	return firstEnv(mongoURLVars)
}

// ShouldSkipDatabaseTest returns true if no PostgreSQL URL is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

func firstEnv(names []string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
