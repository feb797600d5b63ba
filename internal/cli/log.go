package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Dataset versions and ATT&CK ids in key
// values are highlighted so they stand out in --verbose output.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	styles := log.DefaultStyles()
	for _, key := range []string{"version", "from", "to", "id"} {
		styles.Values[key] = lipgloss.NewStyle().Foreground(colorCyan)
	}
	styles.Keys["took"] = lipgloss.NewStyle().Foreground(colorDim)
	styles.Values["took"] = lipgloss.NewStyle().Foreground(colorDim)
	l.SetStyles(styles)
	return l
}

// stopwatch logs how long a step such as a download or render took.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

func (s stopwatch) elapsed() time.Duration {
	return time.Since(s.start).Round(time.Millisecond)
}

// done logs msg at debug level with the elapsed time under "took".
func (s stopwatch) done(msg string, keyvals ...any) {
	s.logger.Debug(msg, append(keyvals, "took", s.elapsed())...)
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger set by the root command, falling
// back to log.Default for commands run without it.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
