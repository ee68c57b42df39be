package executor

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats accumulates one job's run-time counters, adapted from the
// teacher's root-level accounting.go Stats/StringSet pair (mutex-guarded
// counters plus a StringSet of in-flight items) onto this executor's
// entries-in-flight and completed/failed counts instead of transfer
// bytes/checks.
type Stats struct {
	mu          sync.RWMutex
	completed   int64
	failed      int64
	bytesMoved  int64
	errors      []string
	inFlight    stringSet
	start       time.Time
}

// stringSet mirrors accounting.go's StringSet: a small set of strings
// rendered together for a progress line.
type stringSet map[string]bool

func (ss stringSet) String() string {
	out := make([]string, 0, len(ss))
	for k := range ss {
		out = append(out, k)
	}
	return fmt.Sprint(out)
}

// NewStats returns a zeroed Stats with its clock started.
func NewStats() *Stats {
	return &Stats{inFlight: make(stringSet), start: time.Now()}
}

// Starting records an entry beginning execution.
func (s *Stats) Starting(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight[description] = true
}

// Completed records a successfully finished operation.
func (s *Stats) Completed(description string, bytesMoved int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, description)
	s.completed++
	s.bytesMoved += bytesMoved
	operationsTotal.WithLabelValues("completed").Inc()
}

// Failed records an operation that errored out, keeping its message.
func (s *Stats) Failed(description, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, description)
	s.failed++
	s.errors = append(s.errors, errMsg)
	operationsTotal.WithLabelValues("failed").Inc()
}

// Snapshot returns the counters as of now.
func (s *Stats) Snapshot() (completed, failed int64, errs []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	errsCopy := make([]string, len(s.errors))
	copy(errsCopy, s.errors)
	return s.completed, s.failed, errsCopy
}

// String renders a human progress summary, in the spirit of
// accounting.go's Stats.String.
func (s *Stats) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	elapsed := time.Since(s.start)
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "Completed: %6d  Failed: %6d  Moved: %8d bytes  Elapsed: %v\n",
		s.completed, s.failed, s.bytesMoved, elapsed)
	if len(s.inFlight) > 0 {
		fmt.Fprintf(buf, "In progress: %s\n", s.inFlight)
	}
	return buf.String()
}

var operationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "executor",
		Name:      "operations_total",
		Help:      "Count of executed filesystem operations by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(operationsTotal)
}
