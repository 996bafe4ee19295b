package log

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"go.uber.org/zap"
)

func TestSetOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("Fetch cycle started", zap.String("city", "Paris"), zap.Uint64("sequence", 3))
	Debug("not written at info level")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}

	if entry["msg"] != "Fetch cycle started" || entry["level"] != "info" {
		t.Errorf("unexpected entry %v", entry)
	}
	if entry["city"] != "Paris" || entry["sequence"] != float64(3) {
		t.Errorf("expected fields, got %v", entry)
	}
	if _, ok := entry["@timestamp"]; !ok {
		t.Error("expected @timestamp")
	}
	if _, ok := entry["logger_name"]; !ok {
		t.Error("expected caller under logger_name")
	}
}
