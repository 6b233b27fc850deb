package config

import (
	"log/slog"

	"github.com/subosito/gotenv"
)

const envFile = ".env.local"

// LoadEnv applies overrides from the optional .env.local file. A missing file
// is not an error, it just leaves the defaults in effect.
func LoadEnv() bool {
	if err := gotenv.Load(envFile); err != nil {
		slog.Info("[Config] No .env.local file found, using default settings")
		return false
	}
	slog.Info("[Config] Custom environment variables loaded",
		slog.String("file", envFile))
	return true
}
