package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_JSONFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: zerolog.InfoLevel, Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Debug("hidden", "k", "v")
	Info("record created", "name", "peer_10.example.com", "ttl", 300)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "record created" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["name"] != "peer_10.example.com" {
		t.Errorf("name field = %v", entry["name"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestWithOperation_AddsOpID(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: zerolog.DebugLevel, Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := WithOperation(context.Background(), "sync")
	FromContext(ctx).Debug("starting")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["operation"] != "sync" {
		t.Errorf("operation = %v", entry["operation"])
	}
	if id, _ := entry["op_id"].(string); len(id) != 8 {
		t.Errorf("op_id = %v, want 8 chars", entry["op_id"])
	}
}

func TestFromContext_Fallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should fall back to the default logger")
	}
}

func TestNop_DiscardsUnderContext(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: zerolog.DebugLevel, Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := WithOperation(ContextWithLogger(context.Background(), Nop()), "sync")
	FromContext(ctx).Error("dropped", "k", "v")

	if buf.Len() != 0 {
		t.Errorf("expected nothing logged, got %q", buf.String())
	}
}
