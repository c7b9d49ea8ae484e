// Package config handles configuration loading, parsing, and validation
// from a YAML file and SHAREPLATE_-prefixed environment variables. It provides
// type-safe access to settings while keeping configuration details separate
// from business logic.
package config
