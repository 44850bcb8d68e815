package octoprint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// EventSlicingProfilesChanged is pushed whenever a profile is added, removed
// or changes its default flag.
const EventSlicingProfilesChanged = "slicingProfilesChanged"

// Event is a push notification from the events socket.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventsURL returns the websocket URL of the events endpoint.
func (c *Client) EventsURL() (string, error) {
	target, err := c.ResolveURL(eventsPath)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return u.String(), nil
}

// Events subscribes to the events socket. The returned channel is closed when
// ctx is cancelled or the connection drops.
func (c *Client) Events(ctx context.Context) (<-chan Event, error) {
	target, err := c.EventsURL()
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if c.APIKey != "" {
		header.Set(apiKeyHeader, c.APIKey)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("events: dial %s: %d %s", target, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return nil, fmt.Errorf("events: dial %s: %w", target, err)
	}

	events := make(chan Event, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure,
				) {
					c.logf("[events] read error: %v", err)
				}
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
