package server

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/muurk/ookbridge/internal/decoder"
	"github.com/muurk/ookbridge/internal/logging"
	"go.uber.org/zap"
)

// Subscribe connects to a bridge's feed (ws://host:port/ws) and returns its
// events. The channel is closed when ctx is cancelled or the connection
// drops.
func Subscribe(ctx context.Context, url string) (<-chan decoder.Event, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	events := make(chan decoder.Event, sendBuffer)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()

		for {
			var ev decoder.Event
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logging.Warn("Feed connection closed", zap.String("url", url), zap.Error(err))
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
