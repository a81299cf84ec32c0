package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/models"
)

// Subscribe opens the realtime websocket and calls fn for every event on
// the given channels. It blocks until ctx is done or the connection drops.
func (c *Client) Subscribe(ctx context.Context, channels []string, fn func(models.RealtimeEvent)) error {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return fmt.Errorf("realtime url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	if len(channels) > 0 {
		q.Set("channels", strings.Join(channels, ","))
	}
	if c.token != "" {
		q.Set("token", c.token)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: "realtime subscription rejected"}
		}
		return &NetworkError{Method: "GET", Path: "/ws", Err: err}
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &NetworkError{Method: "GET", Path: "/ws", Err: err}
		}
		var ev models.RealtimeEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			logrus.Warnf("realtime: dropping malformed event: %v", err)
			continue
		}
		fn(ev)
	}
}
