package connection

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the JSON logger shared by the server. An unknown level
// falls back to info.
func NewLogger(level string) zerolog.Logger {
	return newLogger(os.Stderr, level)
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
