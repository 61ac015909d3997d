package logging

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// init instantiates the disabled global logger and configures zerolog for structured log files: stack traces through
// pkg/errors, millisecond timestamps, and durations (such as compiler invocation times) in milliseconds.
func init() {
	GlobalLogger = NewLogger(zerolog.Disabled)

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.DurationFieldUnit = time.Millisecond
}
