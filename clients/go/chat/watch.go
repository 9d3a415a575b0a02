package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Watch connects to the server's push channel and invokes fn for every
// event, starting with init. It returns when ctx is cancelled or the stream
// ends; callers decide whether to reconnect or fall back to Poll.
func (c *Client) Watch(ctx context.Context, fn func(Event) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The watch client must not time out an open stream.
	httpClient := &http.Client{Transport: c.HTTPClient.Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: "event stream unavailable"}
	}

	var (
		name string
		data strings.Builder
	)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" && data.Len() > 0 {
				e := Event{Name: name, Data: json.RawMessage(data.String())}
				if err := fn(e); err != nil {
					return err
				}
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// keepalive comment
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("event stream: %w", err)
	}
	return ctx.Err()
}

// Poll reconciles the view from full snapshots at a fixed interval. onSync
// runs after every fetch that changed the view. Poll is the fallback
// strategy when the push channel is unavailable; a view that already
// consumed push events can be handed over safely because reconciliation
// dedupes by id.
func (c *Client) Poll(ctx context.Context, interval time.Duration, view *View, onSync func(*View)) error {
	if interval <= 0 {
		interval = 3 * time.Second
	}

	fetch := func() error {
		snap, err := c.GetSnapshot()
		if err != nil {
			return err
		}
		if view.ApplySnapshot(*snap) && onSync != nil {
			onSync(view)
		}
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fetch(); err != nil {
				return err
			}
		}
	}
}
