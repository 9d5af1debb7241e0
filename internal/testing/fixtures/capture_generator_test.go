package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/data/capture"
)

var start = time.Date(2024, 10, 13, 10, 30, 0, 0, time.UTC)

func TestGenerateFrames(t *testing.T) {
	g := NewCaptureGenerator(t.TempDir())

	path, err := g.GenerateFrames("frames.ndjson", start, 3)
	require.NoError(t, err)

	loaded, err := capture.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1+3*6, len(loaded.Events))
	assert.Zero(t, loaded.Skipped)

	_, ok := loaded.Events[0].(beacon.Connected)
	assert.True(t, ok)
	_, update, ok := beacon.UpdateSpan(loaded.Events[len(loaded.Events)-6])
	require.True(t, ok)
	assert.Equal(t, 3, update.Number)
	assert.Equal(t, "Tick(3)", update.Message)
}

func TestAppendEventsAndLines(t *testing.T) {
	g := NewCaptureGenerator(t.TempDir())

	path, err := g.GenerateSimpleSession("simple.ndjson", start)
	require.NoError(t, err)
	require.NoError(t, g.AppendEvents(path, beacon.QuitRequested{Time: start.Add(time.Second)}))

	loaded, err := capture.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, loaded.Events, 6)
	assert.IsType(t, beacon.QuitRequested{}, loaded.Events[5])

	garbage, err := g.WriteLines("garbage.ndjson", "not json", `{"type":"nope"}`)
	require.NoError(t, err)
	loaded, err = capture.ReadFile(garbage)
	require.NoError(t, err)
	assert.Empty(t, loaded.Events)
	assert.Equal(t, 2, loaded.Skipped)
}
