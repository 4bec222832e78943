package a2a

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// SSEWriter writes Server-Sent Events to an http.ResponseWriter. It is safe
// for concurrent use. Call Init once before writing any events.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter wraps w. Without http.Flusher support the events may be
// buffered by the server.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	f, _ := w.(http.Flusher)
	return &SSEWriter{w: w, flusher: f}
}

// Init sets the SSE response headers and flushes them to the client.
func (sw *SSEWriter) Init() {
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	sw.w.WriteHeader(http.StatusOK)
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
}

// WriteEvent writes event as an unnamed "data: {json}" frame.
func (sw *SSEWriter) WriteEvent(event StreamEvent) error {
	return sw.WriteNamed("", event)
}

// WriteNamed writes v as JSON in a frame carrying the given event name. An
// empty name omits the event field.
func (sw *SSEWriter) WriteNamed(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse: marshal event: %w", err)
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()
	if name != "" {
		if _, err := fmt.Fprintf(sw.w, "event: %s\n", name); err != nil {
			return fmt.Errorf("sse: write event: %w", err)
		}
	}
	if _, err := fmt.Fprintf(sw.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("sse: write event: %w", err)
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}

// ReadEvents parses SSE frames from body and delivers them as StreamEvents.
// The channel is closed when the body is exhausted, on a read error, or when
// ctx is cancelled; body is closed at that point.
//
// Multiple data lines of one frame are joined with newlines. Comments and
// unknown fields are ignored. A frame that is not valid JSON yields an event
// with Err set and reading continues. An error frame from the server yields
// an event with Err set to an *RPCError.
func ReadEvents(ctx context.Context, body io.ReadCloser) <-chan StreamEvent {
	ch := make(chan StreamEvent)
	go func() {
		defer close(ch)
		defer body.Close()

		// Unblock the scanner when the caller gives up.
		stop := context.AfterFunc(ctx, func() { body.Close() })
		defer stop()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var data strings.Builder
		flush := func() bool {
			if data.Len() == 0 {
				return true
			}
			ok := deliver(ctx, ch, data.String())
			data.Reset()
			return ok
		}

		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if !flush() {
					return
				}
				continue
			}
			field, value, _ := strings.Cut(line, ":")
			if field != "data" {
				continue
			}
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(value, " "))
		}
		flush()
	}()
	return ch
}

// deliver decodes raw and sends it on ch. It reports false once ctx is done.
func deliver(ctx context.Context, ch chan<- StreamEvent, raw string) bool {
	var ev StreamEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		ev = StreamEvent{Err: fmt.Errorf("sse: unmarshal event: %w", err)}
	} else if ev.Error != nil {
		ev.Err = newRPCError(MethodStreamMessage, ev.Error)
	}
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
