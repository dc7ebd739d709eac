package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/log"
)

func writeCapture(t *testing.T, events []log.Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bridge.cbor")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, event := range events {
		logger.Log(event)
	}
	logger.Close()
	return path
}

func sampleEvents() []log.Event {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return []log.Event{
		{
			Timestamp: base,
			BridgeID:  "bridge-aaaa-1111",
			Category:  log.CategoryBuild,
			Origin:    log.OriginBridge,
			Build:     &log.BuildEvent{Folders: 2, Variables: 5, Subscriptions: 4},
		},
		{
			Timestamp: base.Add(time.Second),
			BridgeID:  "bridge-aaaa-1111",
			Category:  log.CategoryChange,
			Origin:    log.OriginDevice,
			Path:      "Motor.Speed",
			NodeID:    "ns=1;i=7",
			Change:    &log.ChangeEvent{Value: int64(500), Quality: 1},
		},
		{
			Timestamp: base.Add(2 * time.Second),
			BridgeID:  "bridge-aaaa-1111",
			Category:  log.CategoryError,
			Origin:    log.OriginDevice,
			Path:      "Motor.Current",
			Error:     &log.ErrorEvent{Message: "device timeout", Context: "read-through"},
		},
		{
			Timestamp: base.Add(3 * time.Second),
			BridgeID:  "bridge-aaaa-1111",
			Category:  log.CategoryTeardown,
			Origin:    log.OriginBridge,
		},
	}
}

func TestRunViewAll(t *testing.T) {
	path := writeCapture(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"BUILD", "CHANGE", "Motor.Speed", "ns=1;i=7", "device timeout", "TEARDOWN", "bridge:bridge-a"} {
		if !strings.Contains(out, want) {
			t.Errorf("view output missing %q:\n%s", want, out)
		}
	}
}

func TestRunViewCategoryFilter(t *testing.T) {
	path := writeCapture(t, sampleEvents())

	category := log.CategoryChange
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Category: &category}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Motor.Speed") {
		t.Errorf("filtered view missing the change event:\n%s", out)
	}
	if strings.Contains(out, "TEARDOWN") {
		t.Errorf("category filter leaked teardown event:\n%s", out)
	}
}

func TestParseCategoryFlag(t *testing.T) {
	c, err := ParseCategoryFlag("Change")
	if err != nil || c != log.CategoryChange {
		t.Errorf("ParseCategoryFlag(Change) = (%v, %v)", c, err)
	}
	if _, err := ParseCategoryFlag("bogus"); err == nil {
		t.Error("ParseCategoryFlag accepted bogus value")
	}
}

func TestParseOriginFlag(t *testing.T) {
	o, err := ParseOriginFlag("DEVICE")
	if err != nil || o != log.OriginDevice {
		t.Errorf("ParseOriginFlag(DEVICE) = (%v, %v)", o, err)
	}
	if _, err := ParseOriginFlag("bogus"); err == nil {
		t.Error("ParseOriginFlag accepted bogus value")
	}
}

func TestRunExportJSONL(t *testing.T) {
	path := writeCapture(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "events.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := readAll(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("exported %d lines, want 4", len(lines))
	}
	// Each line must be standalone JSON.
	for i, line := range lines {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestRunExportCSV(t *testing.T) {
	path := writeCapture(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "events.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := readAll(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 { // header + 4 events
		t.Fatalf("exported %d lines, want 5", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,bridge_id,origin,category") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(data, "Motor.Speed") {
		t.Error("CSV missing tag path column value")
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := writeCapture(t, sampleEvents())
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("RunExport accepted unknown format")
	}
}

func TestRunFilter(t *testing.T) {
	path := writeCapture(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "filtered.cbor")

	err := RunFilter(path, FilterOptions{Output: out, Origin: "device"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if event.Origin != log.OriginDevice {
			t.Errorf("filter leaked origin %s", event.Origin)
		}
		count++
	}
	if count != 2 {
		t.Errorf("filtered %d events, want 2", count)
	}
}

func TestRunFilterBadTime(t *testing.T) {
	path := writeCapture(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "filtered.cbor")

	err := RunFilter(path, FilterOptions{Output: out, TimeStart: "yesterday"})
	if err == nil {
		t.Error("RunFilter accepted invalid time")
	}
}

func TestRunStats(t *testing.T) {
	path := writeCapture(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Total Events: 4",
		"BUILD:",
		"CHANGE:",
		"Motor.Speed",
		"Bridge Instances: 1",
		"Builds: 1  Teardowns: 1",
		"Errors: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func readAll(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}
