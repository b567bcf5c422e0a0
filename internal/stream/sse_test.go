package stream

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEventDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	events := []entity.StreamEvent{
		{Type: entity.StreamEventQuestion, Data: "What is"},
		{Type: entity.StreamEventQuestion, Data: " your goal?"},
		{Type: entity.StreamEventCompletion, ID: "q1", Kind: entity.QuestionKindOpen},
		{Type: entity.StreamEventEnd},
	}
	for _, ev := range events {
		require.NoError(t, WriteEvent(&buf, nil, ev))
	}

	dec := NewDecoder(&buf)
	for _, want := range events {
		got, err := dec.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderSkipsCommentsAndBlankLines(t *testing.T) {
	raw := ": keepalive\n\n" +
		"data: {\"type\":\"question\",\"data\":\"hello\"}\n\n" +
		": another comment\n" +
		"data: {\"type\":\"end\"}\n\n"

	dec := NewDecoder(strings.NewReader(raw))

	ev, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, entity.StreamEventQuestion, ev.Type)
	assert.Equal(t, "hello", ev.Data)

	ev, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, entity.StreamEventEnd, ev.Type)
}

func TestDecoderRejectsMalformedPayload(t *testing.T) {
	dec := NewDecoder(strings.NewReader("data: not-json\n\n"))

	_, err := dec.Next()
	assert.Error(t, err)
}
