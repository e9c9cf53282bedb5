package logger

import (
	"bytes"
	"context"
	"encoding/json"
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
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	Get().Info(context.Background(), "simulated",
		String("edition", "2025"),
		Int("games", 63),
		Bool("cached", false),
		Duration("took", time.Millisecond),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "simulated" || rec["edition"] != "2025" {
		t.Fatalf("unexpected record: %v", rec)
	}
	src, _ := rec["source"].(string)
	if !strings.Contains(src, "logger_test.go") {
		t.Fatalf("source should point at the caller, got %q", src)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf), WithLevel(slog.LevelWarn)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	ctx := context.Background()
	Get().Info(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	if err := SetLevelString("debug"); err != nil {
		t.Fatal(err)
	}
	Named("store").With(String("driver", "memory")).Debug(ctx, "visible")
	if !strings.Contains(buf.String(), "visible") || !strings.Contains(buf.String(), "driver=memory") {
		t.Fatalf("expected debug line, got %q", buf.String())
	}
}

func TestParseFormatAndLevel(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Fatalf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Fatalf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
