package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *captureSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) snapshot() ([]Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...), s.closed
}

func validEvent(stage Stage) Event {
	return Event{
		RunID: UUIDToBytes(uuid.New()),
		TS:    time.Now().UTC(),
		Stage: stage,
		Key:   "https://musclewiki.com/exercise/push-up/",
	}
}

func TestHub_DeliversAndCloses(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: 10 * time.Millisecond}, sink)

	hub.Emit(validEvent(StageItemDone))
	hub.Emit(validEvent(StageItemFail))
	require.NoError(t, hub.Close(context.Background()))

	events, closed := sink.snapshot()
	require.Len(t, events, 2)
	require.True(t, closed)

	// Emitting after close is a no-op.
	hub.Emit(validEvent(StageItemDone))
	events, _ = sink.snapshot()
	require.Len(t, events, 2)
}

func TestHub_DiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{}, sink)

	hub.Emit(Event{Stage: StageItemDone})
	require.NoError(t, hub.Close(context.Background()))

	events, _ := sink.snapshot()
	require.Empty(t, events)
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	evt := validEvent(StageItemDone)
	require.NoError(t, evt.Validate())

	missingKey := evt
	missingKey.Key = ""
	require.Error(t, missingKey.Validate())

	runLevel := evt
	runLevel.Stage = StageRunStart
	runLevel.Key = ""
	require.NoError(t, runLevel.Validate())

	unknown := evt
	unknown.Stage = "WAT"
	require.Error(t, unknown.Validate())

	zeroID := evt
	zeroID.RunID = [16]byte{}
	require.Error(t, zeroID.Validate())
}
