package websocket

import (
	"net/http"
	"strings"
	"time"

	"clouddrive/internal/utils"
	"clouddrive/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Options struct {
	ReadBufferSize    int
	WriteBufferSize   int
	HandshakeTimeout  time.Duration
	PingInterval      time.Duration
	PongTimeout       time.Duration
	EnableCompression bool
	AllowedOrigins    []string
}

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	options  Options
	logger   *logger.Logger
}

func NewHandler(hub *Hub, options Options, log *logger.Logger) *Handler {
	if options.PongTimeout <= 0 {
		options.PongTimeout = 60 * time.Second
	}
	if options.PingInterval <= 0 || options.PingInterval >= options.PongTimeout {
		options.PingInterval = (options.PongTimeout * 9) / 10
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    options.ReadBufferSize,
			WriteBufferSize:   options.WriteBufferSize,
			HandshakeTimeout:  options.HandshakeTimeout,
			EnableCompression: options.EnableCompression,
			CheckOrigin:       originChecker(options.AllowedOrigins),
		},
		options: options,
		logger:  log.WithField("component", "websocket_handler"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	origins := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		origins[strings.TrimSuffix(origin, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origins[origin]
	}
}

// HandleWebSocket upgrades an authenticated request and joins the caller's room.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString(utils.ContextUserID)
	if userID == "" {
		utils.UnauthorizedResponse(c)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithUserID(userID).WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, userID, h.options.PingInterval, h.options.PongTimeout)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}
