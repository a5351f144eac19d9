package telemetry

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"propbox/server/logging"
)

func TestWrapLoggerForwardsPrintf(t *testing.T) {
	var buf bytes.Buffer
	logger := WrapLogger(log.New(&buf, "", 0))
	logger.Printf("tick %d lagging", 42)
	if got := buf.String(); !strings.Contains(got, "tick 42 lagging") {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestLoggerFuncNilIsSafe(t *testing.T) {
	var logger Logger = LoggerFunc(nil)
	logger.Printf("ignored %d", 1)
}

func TestWrapMetricsAccumulates(t *testing.T) {
	table := logging.NewMetrics()
	metrics := WrapMetrics(table)

	metrics.Add("commands_total", 2)
	metrics.Add("commands_total", 3)
	metrics.Store("queue_depth", 7)
	metrics.Store("queue_depth", 4)

	snapshot := table.TelemetrySnapshot()
	if snapshot["commands_total"] != 5 {
		t.Fatalf("expected counter at 5, got %d", snapshot["commands_total"])
	}
	if snapshot["queue_depth"] != 4 {
		t.Fatalf("expected gauge overwritten to 4, got %d", snapshot["queue_depth"])
	}
}

func TestWrapMetricsNilTableIsSafe(t *testing.T) {
	metrics := WrapMetrics(nil)
	metrics.Add("ignored", 1)
	metrics.Store("ignored", 1)
}
