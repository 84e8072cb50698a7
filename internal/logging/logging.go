package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger returns the process-wide logger. The global zerolog logger is
// pointed at the same output so leaf packages using zerolog/log stay
// consistent with injected loggers.
func NewLogger() *zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return &logger
}

// SetLevel applies a named level ("debug", "info", ...) globally. Unparseable
// names leave the level untouched.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Msgf("unknown log level %q", level)
		return
	}
	zerolog.SetGlobalLevel(parsed)
}
