package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ApplyEnv overlays EMBEDD_* environment variables onto cfg. Variables
// that are set win over file values. A .env file in the working directory
// is read first when present; a missing file is not an error.
func ApplyEnv(cfg Config) Config {
	_ = godotenv.Load()

	if v := os.Getenv("EMBEDD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("EMBEDD_MODELS"); v != "" {
		cfg.Models = SplitCSV(v)
	}
	if v := os.Getenv("EMBEDD_MODELS_DIR"); v != "" {
		cfg.ModelsDir = v
	}
	if v := os.Getenv("EMBEDD_DEVICE"); v != "" {
		cfg.Device = v
	}
	if v := os.Getenv("EMBEDD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("EMBEDD_QUEUE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.QueueDepth = n
		}
	}
	if v := os.Getenv("EMBEDD_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("EMBEDD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("EMBEDD_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("EMBEDD_REQUIRE_AUTH"); v != "" {
		cfg.RequireAuth = strings.EqualFold(v, "true") || v == "1"
	}
	return cfg
}

// SplitCSV splits a comma-separated list, trimming whitespace and
// dropping empty items.
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
