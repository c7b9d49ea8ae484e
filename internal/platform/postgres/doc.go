// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package.
//
// Food listings keep their free-form donor attributes in a JSONB column so
// partial updates merge with the || operator. Status changes are conditional
// UPDATEs, and Decider applies a decision to both tables in one transaction.
// The schema lives in the migrations subpackage and is applied with goose.
package postgres
