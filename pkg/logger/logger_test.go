package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-initialization is harmless.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf)

	ctx := context.Background()
	log.Info(ctx, "report loaded",
		String("path", "data.csv"),
		Int("rows", 12),
		Int64("days", 92),
		Duration("took", 150*time.Millisecond),
	)

	out := buf.String()
	for _, want := range []string{"report loaded", "path=data.csv", "rows=12", "days=92", "took=150ms", "source="} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf)

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer SetLevel(slog.LevelInfo)

	ctx := context.Background()
	log.Info(ctx, "quiet")
	log.Warn(ctx, "loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info line leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn line missing: %q", out)
	}

	if err := SetLevelString("nope"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf)

	named := log.Named("loader")
	named.Info(context.Background(), "ready", String("k", "v"))

	out := buf.String()
	if !strings.Contains(out, "loader.k=v") {
		t.Errorf("expected grouped field, got %q", out)
	}
}
