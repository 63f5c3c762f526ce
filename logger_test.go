package coalesce_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"coalesce"
)

func TestSimpleLogger_LevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := &coalesce.SimpleLogger{
		MinLevel:     coalesce.LogLevelInfo,
		StdoutLogger: log.New(&out, "", 0),
		StderrLogger: log.New(&errOut, "", 0),
	}

	logger.Debug("hidden %d", 1)
	logger.Info("shown %d", 2)
	logger.Warn("warned")
	logger.Error("failed")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message should have been filtered")
	}
	if !strings.Contains(out.String(), "[INFO] shown 2") {
		t.Errorf("missing info message, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[WARN] warned") {
		t.Errorf("missing warn message, got %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "[ERROR] failed") {
		t.Errorf("missing error message, got %q", errOut.String())
	}
}

func TestLogLevel_String(t *testing.T) {
	levels := map[coalesce.LogLevel]string{
		coalesce.LogLevelDebug: "DEBUG",
		coalesce.LogLevelInfo:  "INFO",
		coalesce.LogLevelWarn:  "WARN",
		coalesce.LogLevelError: "ERROR",
		coalesce.LogLevel(42):  "UNKNOWN",
	}
	for level, want := range levels {
		if got := level.String(); got != want {
			t.Errorf("LogLevel(%d).String() = %q, expected %q", level, got, want)
		}
	}
}

func TestNoOpLogger(t *testing.T) {
	// Must not panic.
	logger := &coalesce.NoOpLogger{}
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")
}
