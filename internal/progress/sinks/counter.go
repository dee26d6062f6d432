package sinks

import (
	"context"
	"sync"

	"github.com/calistenia/catalog/internal/progress"
)

// Totals is a point-in-time snapshot of item outcomes for a run.
type Totals struct {
	Done    int
	Skipped int
	Failed  int
}

// CounterSink tallies item outcomes so the CLI can print a final summary
// without re-reading logs.
type CounterSink struct {
	mu     sync.Mutex
	totals Totals
}

// NewCounterSink returns an empty counter.
func NewCounterSink() *CounterSink {
	return &CounterSink{}
}

// Consume updates the tallies from a batch.
func (s *CounterSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageItemDone:
			s.totals.Done++
		case progress.StageItemSkip:
			s.totals.Skipped++
		case progress.StageItemFail:
			s.totals.Failed++
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *CounterSink) Close(context.Context) error {
	return nil
}

// Totals returns the current tallies.
func (s *CounterSink) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}
