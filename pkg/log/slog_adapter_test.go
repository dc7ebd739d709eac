package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSlogAdapterWritesAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		Category:  CategoryChange,
		Origin:    OriginDevice,
		Path:      "Motor.Speed",
		NodeID:    "ns=1;i=7",
		Change:    &ChangeEvent{Value: int64(500), Quality: 1},
	})

	out := buf.String()
	// TextHandler quotes values containing '='.
	for _, want := range []string{"category=CHANGE", "origin=DEVICE", "path=Motor.Speed", `node_id="ns=1;i=7"`, "value=500"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterErrorPayload(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		Category:  CategoryError,
		Origin:    OriginDevice,
		Error:     &ErrorEvent{Message: "device timeout", Context: "read-through"},
	})

	out := buf.String()
	if !strings.Contains(out, "device timeout") || !strings.Contains(out, "read-through") {
		t.Errorf("error payload missing from output: %s", out)
	}
}
