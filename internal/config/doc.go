// Package config loads desk client configuration from a YAML file.
//
// Values may reference environment variables with ${VAR} syntax; they are
// expanded before parsing. Optional fields fall back to defaults targeting
// a local backend on ports 9002-9004.
package config
