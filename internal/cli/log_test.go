package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("using cached dataset") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("listed releases") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("listed releases") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("registry unreachable") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLoggerKeyValues(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("downloaded dataset", "version", "11.0")
	out := buf.String()
	if !strings.Contains(out, "downloaded dataset") || !strings.Contains(out, "11.0") {
		t.Errorf("output = %q", out)
	}
}

func TestStopwatch(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)

	sw := startStopwatch(l)
	if sw.elapsed() < 0 {
		t.Fatal("negative elapsed time")
	}
	sw.done("rendered svg", "bytes", 512)

	out := buf.String()
	for _, want := range []string{"rendered svg", "bytes", "512", "took"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestStopwatchQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	startStopwatch(newLogger(&buf, log.InfoLevel)).done("checked dataset")
	if buf.Len() != 0 {
		t.Errorf("stopwatch logged at info level: %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should fall back to log.Default")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	if loggerFromContext(ctx) != l {
		t.Error("logger not carried by context")
	}
}
