package stream

import (
	"testing"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubReplaysHistoryToLateSubscribers(t *testing.T) {
	h := NewHub(8, nil)
	h.Open("s1")

	require.NoError(t, h.Publish("s1", entity.StreamEvent{Type: entity.StreamEventQuestion, Data: "a"}))
	require.NoError(t, h.Publish("s1", entity.StreamEvent{Type: entity.StreamEventCompletion, ID: "q1"}))

	ch, cancel, err := h.Subscribe("s1")
	require.NoError(t, err)
	defer cancel()

	ev := <-ch
	assert.Equal(t, "a", ev.Data)
	ev = <-ch
	assert.Equal(t, "q1", ev.ID)

	// Live event after replay.
	require.NoError(t, h.Publish("s1", entity.StreamEvent{Type: entity.StreamEventEnd}))
	ev = <-ch
	assert.Equal(t, entity.StreamEventEnd, ev.Type)
}

func TestHubCloseEndsSubscribers(t *testing.T) {
	h := NewHub(8, nil)
	h.Open("s1")

	ch, cancel, err := h.Subscribe("s1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, h.Publish("s1", entity.StreamEvent{Type: entity.StreamEventEnd}))
	h.Close("s1")

	ev, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, entity.StreamEventEnd, ev.Type)

	_, ok = <-ch
	assert.False(t, ok)

	// Publishing after close fails.
	err = h.Publish("s1", entity.StreamEvent{Type: entity.StreamEventQuestion, Data: "late"})
	assert.ErrorIs(t, err, entity.ErrStreamClosed)

	// A subscriber arriving after close still replays history.
	ch2, cancel2, err := h.Subscribe("s1")
	require.NoError(t, err)
	defer cancel2()
	ev, ok = <-ch2
	require.True(t, ok)
	assert.Equal(t, entity.StreamEventEnd, ev.Type)
	_, ok = <-ch2
	assert.False(t, ok)
}

func TestHubUnknownSession(t *testing.T) {
	h := NewHub(8, nil)

	err := h.Publish("missing", entity.StreamEvent{Type: entity.StreamEventEnd})
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	_, _, err = h.Subscribe("missing")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestHubRemoveTearsDownTopic(t *testing.T) {
	h := NewHub(8, nil)
	h.Open("s1")

	ch, _, err := h.Subscribe("s1")
	require.NoError(t, err)

	h.Remove("s1")

	_, ok := <-ch
	assert.False(t, ok)

	_, _, err = h.Subscribe("s1")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}
