package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", false, &buf)
	if err != nil {
		t.Fatalf("error creating logger: %v", err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Str("proof_id", "p1").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "shown" || entry["proof_id"] != "p1" || entry["level"] != "warn" {
		t.Errorf("unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("", true, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info().Msg("proof generated")
	if !strings.Contains(buf.String(), "proof generated") {
		t.Errorf("unexpected output %q", buf.String())
	}
	logger.Debug().Msg("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug message logged at info level")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("loud", false, nil); err == nil {
		t.Error("expected error for an invalid level")
	}
}
