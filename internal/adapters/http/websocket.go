package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/minarah/internal/realtime"
)

// WebSocketHandler returns a handler that upgrades to WebSocket and streams
// SOS events from the hub, one JSON object per text message.
// Anything the client sends is read and discarded.
func WebSocketHandler(hub *realtime.Hub, cfg WSConfig) func(*websocket.Conn) {
	cfg = cfg.withDefaults()

	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		sub := hub.Subscribe()
		slog.Info("ws client connected", "remote", remoteAddr, "subscriber", sub.ID)

		done := make(chan struct{})
		go func() {
			defer close(done)
			writeLoop(c, hub, sub, cfg)
		}()

		// Reading drives control frames and surfaces disconnects.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		hub.Unsubscribe(sub)
		<-done
		slog.Info("ws client disconnected", "remote", remoteAddr, "subscriber", sub.ID)
	}
}

// writeLoop is the only goroutine that writes to c. It returns when the
// subscription channel closes or a write fails, closing the connection so
// the reader unblocks.
func writeLoop(c *websocket.Conn, hub *realtime.Hub, sub *realtime.Subscription, cfg WSConfig) {
	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			_ = c.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				hub.Drop(sub, err)
				return
			}
		case <-ticker.C:
			_ = c.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				hub.Drop(sub, err)
				return
			}
		}
	}
}
