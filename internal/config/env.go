package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads .env then .env.local when present. Variables already set
// in the process environment are never overwritten.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment file", "path", path)
		}
	}
}
