// Package progress defines the event stream emitted by pipeline runs and the
// hub that fans it out to sinks.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone an Event records.
type Stage string

// Supported pipeline stages.
const (
	StageRunStart Stage = "RUN_START"
	StageRunDone  Stage = "RUN_DONE"
	StageItemDone Stage = "ITEM_DONE"
	StageItemSkip Stage = "ITEM_SKIP"
	StageItemFail Stage = "ITEM_FAIL"
)

// Event captures one pipeline milestone.
type Event struct {
	// RunID identifies the pipeline run in 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Key identifies the item: a page URL in crawl mode, a source ID in
	// sync mode. Empty for run-level events.
	Key string
	// Slug is the derived output slug, when one was assigned.
	Slug string
	// Dur captures per-item or per-run latency.
	Dur time.Duration
	// Note carries low-volume context such as error text or skip reason.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageItemDone, StageItemSkip, StageItemFail:
		if e.Key == "" {
			return fmt.Errorf("%s requires an item key", e.Stage)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
