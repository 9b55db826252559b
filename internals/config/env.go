package config

import (
	"log/slog"
	"os"
	"strconv"
)

// GetEnv fetches a key or returns an empty string.
// Critical env vars should use this function.
func GetEnv(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	slog.Error("critical environment variable not set", "key", key)
	return ""
}

// GetEnvAsStr fetches a key or returns a fallback value.
// Useful for non-critical env vars.
func GetEnvAsStr(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvAsInt fetches a key as integer, optionally rejecting non-positive
// values, or returns a fallback value.
func GetEnvAsInt(key string, fallback int, ensurePositive bool) int {
	if valueStr, ok := os.LookupEnv(key); ok {
		if value, err := strconv.Atoi(valueStr); err == nil {
			if ensurePositive && value <= 0 {
				slog.Warn("environment variable is not positive, using fallback", "key", key, "fallback", fallback)
				return fallback
			}
			return value
		}
	}
	return fallback
}

// GetEnvAsBool fetches a key and treats the literal "true" as true.
func GetEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return fallback
}
