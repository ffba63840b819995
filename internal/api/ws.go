package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/fundwatch/internal/scan"
	"github.com/wonny/fundwatch/pkg/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// ProgressHub streams scan progress to websocket clients
// ⭐ SSOT: websocket progress streaming happens only here
type ProgressHub struct {
	broker   *scan.ProgressBroker
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewProgressHub creates a progress hub backed by the scan broker
func NewProgressHub(broker *scan.ProgressBroker, log *logger.Logger) *ProgressHub {
	return &ProgressHub{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The API is same-origin in production; the dashboard dev
				// server runs on another port.
				return true
			},
		},
		logger: log,
	}
}

// HandleProgress upgrades the connection and relays progress updates
// until the client disconnects
// GET /ws/progress
func (h *ProgressHub) HandleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.broker.Subscribe()
	defer cancel()

	// Send the last known progress immediately so a late subscriber is
	// not blind until the next tick
	if p, ok := h.broker.Last(); ok {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(p); err != nil {
			return
		}
	}

	// Reader goroutine: we never expect client messages, but reading is
	// required to notice disconnects and answer control frames
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case p, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
