package websocket

import (
	"context"
	"net/http"
	"time"

	"tricy/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Config struct {
	ReadBufferSize   int
	WriteBufferSize  int
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongTimeout      time.Duration
	MaxMessageSize   int64
	AllowedOrigins   []string
}

type Handler struct {
	hub      *Hub
	config   *Config
	upgrader websocket.Upgrader
}

// NewHandler starts a hub bound to ctx and returns the gin handler serving
// it.
func NewHandler(ctx context.Context, config *Config, log *logger.Logger) *Handler {
	hub := NewHub(log)
	go hub.Run(ctx)

	return &Handler{
		hub:    hub,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
			HandshakeTimeout: config.HandshakeTimeout,
			CheckOrigin:      originChecker(config.AllowedOrigins),
		},
	}
}

// HandleWebSocket expects the auth middleware to have stored user_id and
// user_role on the context.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role := c.GetString("user_role")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, userID, role)
	if h.config.PongTimeout > 0 {
		client.pongWait = h.config.PongTimeout
	}
	if h.config.PingInterval > 0 && h.config.PingInterval < client.pongWait {
		client.pingPeriod = h.config.PingInterval
	}
	if h.config.MaxMessageSize > 0 {
		client.maxMessageSize = h.config.MaxMessageSize
	}

	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// SendUserNotification pushes a notification to all of the user's open
// connections.
func (h *Handler) SendUserNotification(userID string, notificationType string, data map[string]interface{}) int {
	return h.hub.SendToUser(userID, Message{
		Type:      notificationType,
		UserID:    userID,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	})
}

func (h *Handler) SendBookingUpdate(bookingID string, updateType string, data map[string]interface{}) int {
	return h.hub.SendToBooking(bookingID, Message{
		Type:      updateType,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	})
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
