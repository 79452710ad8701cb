package apexlog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
)

func newMemoryLogger(level log.Level) (*Logger, *memory.Handler) {
	handler := memory.New()
	return New(&log.Logger{Handler: handler, Level: level}), handler
}

func TestLogger_KeyValueArgsBecomeFields(t *testing.T) {
	logger, handler := newMemoryLogger(log.DebugLevel)
	logger.Info("deliver succeeded", "status_code", 204, "endpoint", "https://discord.com/api/webhooks/1/[REDACTED]")

	if len(handler.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(handler.Entries))
	}
	entry := handler.Entries[0]
	if entry.Message != "deliver succeeded" || entry.Level != log.InfoLevel {
		t.Fatalf("unexpected entry %q at %s", entry.Message, entry.Level)
	}
	if entry.Fields.Get("status_code") != 204 {
		t.Fatalf("expected status_code field, got %v", entry.Fields)
	}
}

func TestLogger_TraceLogsAtDebugAndOddArgsAreKept(t *testing.T) {
	logger, handler := newMemoryLogger(log.DebugLevel)
	logger.Trace("polling", "attempt", 1, "dangling")

	if len(handler.Entries) != 1 || handler.Entries[0].Level != log.DebugLevel {
		t.Fatalf("expected one debug entry")
	}
	if handler.Entries[0].Fields.Get("!extra") != "dangling" {
		t.Fatalf("expected dangling arg to be kept, got %v", handler.Entries[0].Fields)
	}
}

func TestLogger_WithFieldsAndLevelFiltering(t *testing.T) {
	logger, handler := newMemoryLogger(log.WarnLevel)
	scoped := logger.WithFields(map[string]any{"destination": "discord:1"})
	scoped.Info("filtered out")
	scoped.Warn("throttled")

	if len(handler.Entries) != 1 {
		t.Fatalf("expected info to be filtered, got %d entries", len(handler.Entries))
	}
	if handler.Entries[0].Fields.Get("destination") != "discord:1" {
		t.Fatalf("expected scoped field")
	}
}

func TestProvider_NamesLoggers(t *testing.T) {
	handler := memory.New()
	provider := NewProvider(&log.Logger{Handler: handler, Level: log.InfoLevel})
	provider.GetLogger("webhooks").Error("boom")

	if len(handler.Entries) != 1 || handler.Entries[0].Fields.Get("logger") != "webhooks" {
		t.Fatalf("expected named logger entry, got %+v", handler.Entries)
	}
}

func TestTextHandler_FormatsLine(t *testing.T) {
	var buf bytes.Buffer
	handler := NewTextHandler(&buf)
	handler.now = func() time.Time { return time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC) }
	logger := New(&log.Logger{Handler: handler, Level: log.InfoLevel})

	logger.Warn("rate limited", "retry_after", "1.5s", "bucket", "execute")

	want := "2024-01-15 12:00:00 W rate limited bucket=execute retry_after=1.5s\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestFromEnv_DefaultsToErrorLevel(t *testing.T) {
	t.Setenv(LevelEnv, "")
	var buf bytes.Buffer
	logger := FromEnv(&buf)
	logger.Info("hidden")
	logger.Error("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	t.Setenv(LevelEnv, "DEBUG")
	buf.Reset()
	FromEnv(&buf).Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}
