package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"tricy/pkg/logger"
)

const (
	userRoomPrefix    = "user_"
	bookingRoomPrefix = "booking_"
	driversRoom       = "drivers"
)

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.Mutex
	logger     *logger.Logger
	done       chan struct{}
}

type Message struct {
	Type      string                 `json:"type"`
	RoomID    string                 `json:"room_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     log.WithField("component", "websocket"),
		done:       make(chan struct{}),
	}
}

// Run serves registrations until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		}
	}
}

// Register hands client to the running hub. It reports false once the hub
// has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.joinRoom(client, userRoomPrefix+client.UserID)
	if client.Role == "driver" {
		h.joinRoom(client, driversRoom)
	}

	h.logger.WithUserID(client.UserID).Debug("Client registered")

	h.sendToClient(client, Message{
		Type:      "welcome",
		UserID:    client.UserID,
		Timestamp: getCurrentTimestamp(),
		Data: map[string]interface{}{
			"message": "Connected successfully",
		},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.removeClient(client) {
		h.logger.WithUserID(client.UserID).Debug("Client unregistered")
	}
}

// removeClient must be called with the mutex held.
func (h *Hub) removeClient(client *Client) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}

	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	return true
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		h.removeClient(client)
	}
}

func (h *Hub) sendToRoom(roomID string, message Message) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[roomID]
	if !exists {
		return 0
	}

	delivered := 0
	for client := range room {
		if h.sendToClient(client, message) {
			delivered++
		}
	}
	return delivered
}

// sendToClient must be called with the mutex held. A client whose buffer is
// full is dropped.
func (h *Hub) sendToClient(client *Client, message Message) bool {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to encode websocket message")
		return false
	}

	select {
	case client.send <- data:
		return true
	default:
		h.logger.WithUserID(client.UserID).Warn("Websocket client too slow, disconnecting")
		h.removeClient(client)
		return false
	}
}

// SendToUser delivers message to every open connection of userID and returns
// how many received it.
func (h *Hub) SendToUser(userID string, message Message) int {
	return h.sendToRoom(userRoomPrefix+userID, message)
}

func (h *Hub) SendToBooking(bookingID string, message Message) int {
	message.RoomID = bookingRoomPrefix + bookingID
	return h.sendToRoom(message.RoomID, message)
}

func (h *Hub) SendToDrivers(message Message) int {
	message.RoomID = driversRoom
	return h.sendToRoom(driversRoom, message)
}

// JoinRoom subscribes client to roomID. Clients may only join booking rooms
// on their own; user and driver rooms are assigned at registration.
func (h *Hub) JoinRoom(client *Client, roomID string) bool {
	if !strings.HasPrefix(roomID, bookingRoomPrefix) {
		return false
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return false
	}
	h.joinRoom(client, roomID)
	return true
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, exists := h.rooms[roomID]; exists {
		delete(room, client)
		delete(client.rooms, roomID)

		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) ConnectedClients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
