package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	cleanupInterval = 30 * time.Second
	staleThreshold  = 2 * pongWait
)

// Hub fans events out to the subscribers of each room. Rooms are
// keyed by the room code, normalized to upper case.
type Hub struct {
	rooms map[string]map[*Client]struct{}
	mu    sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}

	h.wg.Add(1)
	go h.cleanupRoutine()

	return h
}

func normalizeCode(code string) string {
	return strings.ToUpper(code)
}

// Register adds the client to a room and tells the rest of the room
// someone arrived.
func (h *Hub) Register(roomCode string, c *Client) {
	roomCode = normalizeCode(roomCode)
	c.RoomCode = roomCode
	c.hub = h

	h.mu.Lock()
	clients, ok := h.rooms[roomCode]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[roomCode] = clients
	}
	clients[c] = struct{}{}
	total := len(clients)
	h.mu.Unlock()

	log.Info().
		Str("roomCode", roomCode).
		Str("clientID", c.ID).
		Int("roomClients", total).
		Msg("ws: client registered")

	h.BroadcastToRoomExcept(roomCode, c, NewEvent(EventUserJoined, map[string]any{
		"participant_count": total,
	}))
}

// Unregister removes the client from its room and tells the rest of
// the room someone left. Idempotent.
func (h *Hub) Unregister(roomCode string, c *Client) {
	roomCode = normalizeCode(roomCode)

	h.mu.Lock()
	clients, ok := h.rooms[roomCode]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, present := clients[c]; !present {
		h.mu.Unlock()
		return
	}
	delete(clients, c)
	total := len(clients)
	if total == 0 {
		delete(h.rooms, roomCode)
	}
	h.mu.Unlock()

	log.Info().
		Str("roomCode", roomCode).
		Str("clientID", c.ID).
		Int("roomClients", total).
		Msg("ws: client unregistered")

	if total > 0 {
		h.BroadcastToRoom(roomCode, NewEvent(EventUserLeft, map[string]any{
			"participant_count": total,
		}))
	}
}

// BroadcastToRoom delivers msg to every subscriber of a room,
// best effort. Slow consumers are skipped rather than blocked on.
func (h *Hub) BroadcastToRoom(roomCode string, msg OutgoingMessage) {
	h.broadcast(normalizeCode(roomCode), nil, msg)
}

// BroadcastToRoomExcept is BroadcastToRoom minus one client, used so
// the actor does not get an echo of its own presence event.
func (h *Hub) BroadcastToRoomExcept(roomCode string, skip *Client, msg OutgoingMessage) {
	h.broadcast(normalizeCode(roomCode), skip, msg)
}

func (h *Hub) broadcast(roomCode string, skip *Client, msg OutgoingMessage) {
	msg.RoomCode = roomCode

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("roomCode", roomCode).Msg("ws: failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	clients := h.rooms[roomCode]
	targets := make([]*Client, 0, len(clients))
	for c := range clients {
		if c == skip {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	dropped := 0
	for _, c := range targets {
		select {
		case c.Send <- data:
		default:
			dropped++
		}
	}

	if dropped > 0 {
		log.Warn().
			Str("roomCode", roomCode).
			Str("event", msg.Type).
			Int("dropped", dropped).
			Msg("ws: dropped broadcast for slow consumers")
	}
}

// GetRoomClients returns a snapshot of the subscribers of a room.
func (h *Hub) GetRoomClients(roomCode string) []*Client {
	roomCode = normalizeCode(roomCode)

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.rooms[roomCode]))
	for c := range h.rooms[roomCode] {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) GetRoomStats(roomCode string) map[string]any {
	roomCode = normalizeCode(roomCode)

	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]any{
		"room_code":    roomCode,
		"client_count": len(h.rooms[roomCode]),
	}
}

func (h *Hub) GetHubStats() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	totalClients := 0
	perRoom := make(map[string]int, len(h.rooms))
	for code, clients := range h.rooms {
		perRoom[code] = len(clients)
		totalClients += len(clients)
	}

	return map[string]any{
		"room_count":   len(h.rooms),
		"client_count": totalClients,
		"rooms":        perRoom,
	}
}

// cleanupRoutine reaps clients that stopped answering pings.
func (h *Hub) cleanupRoutine() {
	defer h.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.reapStaleClients()
		}
	}
}

func (h *Hub) reapStaleClients() {
	cutoff := time.Now().Add(-staleThreshold)

	h.mu.RLock()
	var stale []*Client
	for _, clients := range h.rooms {
		for c := range clients {
			if !c.IsClientActive() || c.GetLastSeen().Before(cutoff) {
				stale = append(stale, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		log.Debug().
			Str("clientID", c.ID).
			Str("roomCode", c.RoomCode).
			Time("lastSeen", c.GetLastSeen()).
			Msg("ws: reaping stale client")
		c.Close()
	}
}

// Close shuts the hub down, disconnecting every client.
func (h *Hub) Close() {
	h.cancel()

	h.mu.RLock()
	var all []*Client
	for _, clients := range h.rooms {
		for c := range clients {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.Close()
	}

	h.wg.Wait()
}
