package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSnapshot(t *testing.T) {
	s := NewStats()
	s.Dispatched("user add")
	s.Dispatched("user add")
	s.Dispatched("exit")
	s.Unknown()
	s.CompletionRequested()
	s.CompletionRequested()
	s.CompletionFailed()

	snap := s.Snapshot()
	if snap.Dispatched["user add"] != 2 || snap.Dispatched["exit"] != 1 {
		t.Errorf("dispatched = %v", snap.Dispatched)
	}
	if snap.Unknown != 1 {
		t.Errorf("unknown = %d, want 1", snap.Unknown)
	}
	if snap.CompletionRequests != 2 || snap.CompletionFailures != 1 {
		t.Errorf("completion counters = %d/%d, want 2/1", snap.CompletionRequests, snap.CompletionFailures)
	}

	// The snapshot is a copy.
	snap.Dispatched["user add"] = 99
	if s.Snapshot().Dispatched["user add"] != 2 {
		t.Error("snapshot shares state with Stats")
	}
}

func TestCollector(t *testing.T) {
	s := NewStats()
	s.Dispatched("group list")
	s.CompletionFailed()

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(s))

	expected := `
# HELP shellac_completion_failures_total Total completion requests that failed.
# TYPE shellac_completion_failures_total counter
shellac_completion_failures_total 1
# HELP shellac_commands_total Total commands dispatched.
# TYPE shellac_commands_total counter
shellac_commands_total{command="group list"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"shellac_commands_total", "shellac_completion_failures_total"); err != nil {
		t.Error(err)
	}
}
