// Package metrics defines the minimal instrumentation surface the pipeline
// emits to: stage counters and stage durations. The core stages depend only
// on Backend; backend selection happens in the command.
package metrics

import "time"

// Labels tags one observation, e.g. {"stage": "normalize"}.
type Labels map[string]string

// Backend receives pipeline observations. Implementations must be safe for
// use from a single goroutine at minimum; the pipeline itself is sequential.
type Backend interface {
	// IncCounter adds delta to a named counter.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records one elapsed-time sample.
	ObserveDuration(name string, d time.Duration, labels Labels)
}

// Nop discards all observations. It is the default backend so the core never
// nil-checks.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)            {}
func (Nop) ObserveDuration(string, time.Duration, Labels) {}

// Metric names emitted by the report pipeline.
const (
	RowsLoaded     = "shootings.rows.loaded"
	RowsFiltered   = "shootings.rows.filtered_out"
	NullOccurredAt = "shootings.normalize.null_occurred_at"
	BadFieldTokens = "shootings.normalize.bad_tokens"
	StageDuration  = "shootings.stage.duration_seconds"
)
