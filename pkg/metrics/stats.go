// Package metrics counts interpreter activity and exports it to
// Prometheus.
package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
)

// Stats records interpreter events. It satisfies cli.Recorder and is
// safe for concurrent use, so a metrics scrape may read it while the
// interpreter runs.
type Stats struct {
	mu         sync.Mutex
	dispatched map[string]uint64

	unknown            atomic.Uint64
	completionRequests atomic.Uint64
	completionFailures atomic.Uint64
}

// NewStats returns empty Stats.
func NewStats() *Stats {
	return &Stats{dispatched: make(map[string]uint64)}
}

// Dispatched counts a command run, keyed by its command path.
func (s *Stats) Dispatched(command string) {
	s.mu.Lock()
	s.dispatched[command]++
	s.mu.Unlock()
}

// Unknown counts a line that named no command.
func (s *Stats) Unknown() { s.unknown.Add(1) }

// CompletionRequested counts a new completion traversal.
func (s *Stats) CompletionRequested() { s.completionRequests.Add(1) }

// CompletionFailed counts a completer failure.
func (s *Stats) CompletionFailed() { s.completionFailures.Add(1) }

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Dispatched         map[string]uint64 `json:"dispatched"`
	Unknown            uint64            `json:"unknown"`
	CompletionRequests uint64            `json:"completion_requests"`
	CompletionFailures uint64            `json:"completion_failures"`
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	dispatched := maps.Clone(s.dispatched)
	s.mu.Unlock()
	return Snapshot{
		Dispatched:         dispatched,
		Unknown:            s.unknown.Load(),
		CompletionRequests: s.completionRequests.Load(),
		CompletionFailures: s.completionFailures.Load(),
	}
}
