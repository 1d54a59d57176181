package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "prod").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged in prod: %s", buf.String())
	}

	NewWithWriter(&buf, "dev").Debug("shown", "order_id", "ORD-1")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["msg"] != "shown" || rec["order_id"] != "ORD-1" {
		t.Fatalf("unexpected record %v", rec)
	}
}
