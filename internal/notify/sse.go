package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// streamEvent is one named event read off the push channel.
type streamEvent struct {
	name string
	data string
}

// stream is an open push channel. It is read by a single goroutine and
// torn down either by Close or by the first read error.
type stream struct {
	resp   *http.Response
	cancel context.CancelFunc
}

// openStream connects the push channel. The client must not carry a
// request timeout; the connection is expected to stay open indefinitely.
func openStream(ctx context.Context, httpClient *http.Client, url string) (*stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("connecting stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("stream rejected with status %d", resp.StatusCode)
	}

	return &stream{resp: resp, cancel: cancel}, nil
}

// Close tears the channel down. Safe to call concurrently with read.
func (s *stream) Close() {
	s.cancel()
	s.resp.Body.Close()
}

// read delivers parsed events to handle until the channel errors or is
// closed. It always returns the terminating condition; the caller
// decides what a teardown means.
func (s *stream) read(handle func(streamEvent)) error {
	scanner := bufio.NewScanner(s.resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var ev streamEvent
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			// Blank line ends the event.
			if ev.data != "" {
				handle(ev)
			}
			ev = streamEvent{}
		case strings.HasPrefix(line, ":"):
			// Comment / keep-alive.
		case strings.HasPrefix(line, "event:"):
			ev.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			chunk := strings.TrimPrefix(line, "data:")
			chunk = strings.TrimPrefix(chunk, " ")
			if ev.data != "" {
				ev.data += "\n"
			}
			ev.data += chunk
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}
	return fmt.Errorf("stream closed by server")
}

// unreadPayload is the body of an "unread" event.
type unreadPayload struct {
	Unread *int `json:"unread"`
}

// defaultPayload is the body of an unnamed event, which may carry
// either shape.
type defaultPayload struct {
	Unread *int                   `json:"unread"`
	Item   *model.NotificationDTO `json:"item"`
}

// parseUnread extracts the counter from an unread event body.
func parseUnread(data string) (int, bool) {
	var p unreadPayload
	if json.Unmarshal([]byte(data), &p) != nil || p.Unread == nil {
		return 0, false
	}
	return *p.Unread, true
}

// parsePayload decodes an unnamed event body into v.
func parsePayload(data string, v interface{}) bool {
	return json.Unmarshal([]byte(data), v) == nil
}

// parseNotification extracts a full record from a notification event body.
func parseNotification(data string) (model.NotificationItem, bool) {
	var dto model.NotificationDTO
	if json.Unmarshal([]byte(data), &dto) != nil || dto.ID == 0 {
		return model.NotificationItem{}, false
	}
	return model.MapNotification(dto), true
}
