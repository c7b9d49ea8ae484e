// Package store defines the persistence contracts for food listings and
// donation requests. Implementations live under internal/platform (postgres,
// mongo); services depend only on the interfaces declared here.
package store
