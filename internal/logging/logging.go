package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global console logger at the given level.
// Unknown levels fall back to info.
func Setup(level string) {
	Configure(os.Stderr, level)
}

func Configure(out io.Writer, level string) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// Job returns a child logger tagged with the job id.
func Job(id string) *zerolog.Logger {
	l := log.With().Str("job_id", id).Logger()
	return &l
}
