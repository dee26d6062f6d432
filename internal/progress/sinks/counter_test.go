package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/calistenia/catalog/internal/progress"
)

func TestCounterSink(t *testing.T) {
	t.Parallel()

	sink := NewCounterSink()
	runID := progress.UUIDToBytes(uuid.New())
	now := time.Now().UTC()

	batch := []progress.Event{
		{RunID: runID, TS: now, Stage: progress.StageRunStart},
		{RunID: runID, TS: now, Stage: progress.StageItemDone, Key: "a"},
		{RunID: runID, TS: now, Stage: progress.StageItemDone, Key: "b"},
		{RunID: runID, TS: now, Stage: progress.StageItemSkip, Key: "c"},
		{RunID: runID, TS: now, Stage: progress.StageItemFail, Key: "d"},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))
	require.NoError(t, sink.Close(context.Background()))

	require.Equal(t, Totals{Done: 2, Skipped: 1, Failed: 1}, sink.Totals())
}
