// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// AlertClient represents a connected alert-feed client
type AlertClient struct {
	conn          *websocket.Conn
	send          chan []byte
	natsConn      *nats.Conn
	subscriptions []*nats.Subscription
	closeOnce     sync.Once
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// AlertsWebSocketHandler streams high-risk and viral alert events to
// connected clients by bridging the NATS alert subjects
func AlertsWebSocketHandler(natsConn *nats.Conn, eventsTopic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if natsConn == nil {
			http.Error(w, "Alert feed not available", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("failed to upgrade to websocket")
			return
		}

		client := &AlertClient{
			conn:     conn,
			send:     make(chan []byte, 256),
			natsConn: natsConn,
		}

		// Subscribe before the pumps start so the subscription list is
		// complete before anything can tear the client down.
		if err := client.subscribe(eventsTopic); err != nil {
			log.Warn().Err(err).Msg("failed to subscribe to alert subjects")
			client.close()
			return
		}

		welcome, _ := json.Marshal(map[string]interface{}{
			"type": "welcome",
			"time": time.Now(),
		})
		client.send <- welcome

		go client.writePump()
		go client.readPump()

		log.Info().Str("remote", r.RemoteAddr).Msg("new alert feed connection")
	}
}

// subscribe bridges the high-risk and viral alert subjects to the client
func (c *AlertClient) subscribe(eventsTopic string) error {
	subjects := []string{
		fmt.Sprintf("%s.highrisk", eventsTopic),
		fmt.Sprintf("%s.viral", eventsTopic),
	}

	for _, subject := range subjects {
		sub, err := c.natsConn.Subscribe(subject, func(msg *nats.Msg) {
			envelope, err := json.Marshal(map[string]interface{}{
				"type":    msg.Subject,
				"payload": json.RawMessage(msg.Data),
			})
			if err != nil {
				return
			}

			select {
			case c.send <- envelope:
			default:
				// Slow client; drop the event rather than block the bus
			}
		})
		if err != nil {
			return fmt.Errorf("error subscribing to %s: %w", subject, err)
		}
		c.subscriptions = append(c.subscriptions, sub)
	}

	return nil
}

// readPump discards inbound messages and keeps the connection alive
func (c *AlertClient) readPump() {
	defer c.close()

	cfg := DefaultWebSocketConfig()
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}
	}
}

// writePump forwards queued alerts and pings the peer
func (c *AlertClient) writePump() {
	cfg := DefaultWebSocketConfig()
	ticker := time.NewTicker(cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close drains NATS subscriptions and closes the connection. Both pumps
// call it on exit, so it must be safe to invoke concurrently.
func (c *AlertClient) close() {
	c.closeOnce.Do(func() {
		for _, sub := range c.subscriptions {
			sub.Unsubscribe()
		}
		c.subscriptions = nil
		c.conn.Close()
	})
}
