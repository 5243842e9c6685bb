package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configura el logger global de zerolog.
// level: debug|info|warn|error (default info)
// format: json|console (default json)
func Init(level, format string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if strings.EqualFold(strings.TrimSpace(format), "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// InitFromEnv lee LOG_LEVEL / LOG_FORMAT / APP_NAME.
func InitFromEnv() {
	Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if app := strings.TrimSpace(os.Getenv("APP_NAME")); app != "" {
		log.Logger = log.Logger.With().Str("app", app).Logger()
	}
}

// Get devuelve el logger global.
func Get() *zerolog.Logger {
	return &log.Logger
}
