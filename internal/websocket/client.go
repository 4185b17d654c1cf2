package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Client struct {
	ID         string
	VoterToken string
	RoomCode   string
	Conn       *websocket.Conn
	Send       chan []byte

	hub    *Hub
	ctx    context.Context
	cancel context.CancelFunc

	ConnectedAt time.Time
	lastSeen    time.Time
	seenMu      sync.RWMutex

	closeOnce sync.Once
}

func NewClient(id, voterToken, roomCode string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	return &Client{
		ID:          id,
		VoterToken:  voterToken,
		RoomCode:    roomCode,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		ctx:         ctx,
		cancel:      cancel,
		ConnectedAt: now,
		lastSeen:    now,
	}
}

// Start launches the read/write pumps. Must be called exactly once,
// after the client is registered with a hub.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) IsClientActive() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
		return true
	}
}

func (c *Client) GetLastSeen() time.Time {
	c.seenMu.RLock()
	defer c.seenMu.RUnlock()
	return c.lastSeen
}

func (c *Client) touch() {
	c.seenMu.Lock()
	c.lastSeen = time.Now()
	c.seenMu.Unlock()
}

func (c *Client) SendMessage(msg OutgoingMessage) {
	msg.RoomCode = c.RoomCode
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("clientID", c.ID).Msg("ws: failed to marshal message")
		return
	}

	select {
	case c.Send <- data:
	case <-c.ctx.Done():
	default:
		// buffer full, drop; the cleanup routine reaps slow consumers
	}
}

// Close tears the client down. Safe to call multiple times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.hub != nil {
			c.hub.Unregister(c.RoomCode, c)
		}
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	})
}

// writePump drains c.Send onto the socket and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			if _, err := w.Write(msg); err != nil {
				_ = w.Close()
				return
			}

			_ = w.Close()

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames (subscribers are read-only) and
// handles pongs for keep-alive.
func (c *Client) readPump() {
	defer c.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.touch()
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
		c.touch()
	}
}
