package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/friendnet/friendnet_backend/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 10000
)

// Client represents one accepted connection: an authenticated user, the
// set of rooms subscribed at connect time, and the underlying transport.
type Client struct {
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte
	userID  uint

	rooms     map[uint]bool
	closeOnce sync.Once
}

// Deliver implements Sink. It never blocks: a full send buffer reports
// false and the bus drops this subscriber.
func (c *Client) Deliver(payload []byte) bool {
	if !c.gateway.echo {
		var sender struct {
			SenderID uint `json:"sender_id"`
		}
		if err := json.Unmarshal(payload, &sender); err == nil && sender.SenderID == c.userID {
			return true
		}
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) subscribed(roomID uint) bool {
	return c.rooms[roomID]
}

// close tears the connection down exactly once: unsubscribes every room,
// closes the send channel and the transport. Safe to call from either pump.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		for roomID := range c.rooms {
			c.gateway.bus.Unsubscribe(c.gateway.kind.Channel(roomID), c)
		}
		close(c.send)
		c.conn.Close()
		metrics.WsConnections.Dec()
	})
}

// readPump drives inbound frames. Frames from one connection are handled
// strictly one at a time, preserving the sender's persist-then-broadcast
// order.
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Uint("user_id", c.userID).Msg("websocket read error")
			}
			break
		}

		c.gateway.handleInbound(c, message)
	}
}

// writePump pumps bus deliveries to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
