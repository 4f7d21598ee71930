package common

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger points the global zerolog logger at a console writer on w (stderr if nil)
func SetupLogger(w io.Writer, debug bool) {
	if w == nil {
		w = os.Stderr
	}
	noColor := w != os.Stderr
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	consoleWriter := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.TimeOnly}
	log.Logger = zerolog.New(consoleWriter).Level(level).With().Timestamp().Logger()
}
