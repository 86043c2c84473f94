package hostloop

import (
	"io"

	"github.com/google/uuid"
	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"

	"github.com/joeycumines/corehost/executor"
)

// Logger is the concrete logiface instantiation used throughout the host,
// backed by zerolog via izerolog - the same facade-plus-backend split the
// teacher's own izerolog package demonstrates.
type Logger = logiface.Logger[*izerolog.Event]

// RunID is a process-lifetime correlation ID, attached to every structured
// log line emitted by NewLogger's returned Logger, so logs from multiple
// host processes can be told apart once aggregated.
var RunID = uuid.NewString()

// NewLogger builds a Logger writing newline-delimited JSON to w at level
// (or above).
func NewLogger(w io.Writer, level logiface.Level) *Logger {
	zl := zerolog.New(w).With().Timestamp().Str("run_id", RunID).Logger()
	return logiface.New[*izerolog.Event](
		izerolog.L.WithZerolog(zl),
		logiface.WithLevel[*izerolog.Event](level),
	)
}

// executorLoggerAdapter satisfies executor.Logger over a Logger, so
// executor/executorpool don't need to know about logiface's generic Event
// parameter.
type executorLoggerAdapter struct{ log *Logger }

func (a executorLoggerAdapter) Warnf(format string, args ...any) {
	a.log.Warning().Logf(format, args...)
}

// AsExecutorLogger adapts log to executor.Logger, or returns nil (executor
// treats a nil Logger as "discard") if log is nil.
func AsExecutorLogger(log *Logger) executor.Logger {
	if log == nil {
		return nil
	}
	return executorLoggerAdapter{log: log}
}
