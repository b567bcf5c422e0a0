// Package stream carries question stream events between the generator pump
// and session subscribers, and codes them on and off the SSE wire.
package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/24thNight/clarify-backend/internal/entity"
)

const (
	// scanner sizing for the SSE decoder
	initialScanBuffer = 64 * 1024
	maxScanBuffer     = 1024 * 1024
)

// WriteEvent writes a single event in SSE framing and flushes it to the
// client immediately.
func WriteEvent(w io.Writer, flusher http.Flusher, ev entity.StreamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal stream event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write stream event: %w", err)
	}

	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

// Decoder reads StreamEvents off an SSE body. Comment lines and unknown
// fields are skipped; data lines are accumulated until the blank line that
// terminates an event.
type Decoder struct {
	scanner *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialScanBuffer), maxScanBuffer)
	return &Decoder{scanner: scanner}
}

// Next returns the next event on the stream. It returns io.EOF when the
// underlying connection is closed.
func (d *Decoder) Next() (entity.StreamEvent, error) {
	var data strings.Builder

	for d.scanner.Scan() {
		line := d.scanner.Text()

		if strings.HasPrefix(line, "data:") {
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			continue
		}

		// Blank line terminates the event.
		if line == "" && data.Len() > 0 {
			var ev entity.StreamEvent
			if err := json.Unmarshal([]byte(data.String()), &ev); err != nil {
				return entity.StreamEvent{}, fmt.Errorf("decode stream event: %w", err)
			}
			return ev, nil
		}
	}

	if err := d.scanner.Err(); err != nil {
		return entity.StreamEvent{}, fmt.Errorf("read stream: %w", err)
	}
	return entity.StreamEvent{}, io.EOF
}
