package log

import (
	"io"

	"github.com/rs/zerolog"
)

// Verbosity is bumped by the persistent -v flag (-v debug, -vv trace).
var Verbosity int

func getLevel(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.InfoLevel
	case 1:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

func GetLogger(out io.Writer, isTerminal bool) zerolog.Logger {
	l := zerolog.New(out).With().Timestamp().Logger().Level(getLevel(Verbosity))

	if isTerminal {
		l = l.Output(zerolog.ConsoleWriter{Out: out})
	}

	return l
}
