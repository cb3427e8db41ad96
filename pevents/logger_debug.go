//go:build pevents_debug

package pevents

import (
	"os"

	"github.com/rs/zerolog"
)

var defaultLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

// SetLogger overrides the package-level logger used by debug builds.
func SetLogger(l zerolog.Logger) {
	defaultLogger = l
}

func logDebug(msg string, fields map[string]any) {
	ev := defaultLogger.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
