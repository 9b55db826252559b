package initializers

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/shivang-26/techCommunity-website/internals/config"
)

// SetupLogger installs the global slog logger. LOG_FORMAT=json switches to
// machine-readable output for production log shipping.
func SetupLogger() {
	var level slog.Level
	switch config.GetEnvAsStr("LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if config.GetEnvAsStr("LOG_FORMAT", "text") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}
