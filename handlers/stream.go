package handlers

import (
	"net/http"
	"time"

	"fixly/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens upstream; the socket itself is origin-agnostic.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeTimeout = 10 * time.Second

// StreamHandler serves the live offer/withdraw stream to connected
// professional clients over a websocket.
type StreamHandler struct {
	Hub    *notification.Hub
	Logger *zap.Logger
}

func NewStreamHandler(hub *notification.Hub, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{Hub: hub, Logger: logger}
}

// Stream subscribes the connection to the (serviceType, district) topic and
// forwards dispatch events until the client disconnects.
func (h *StreamHandler) Stream(c *gin.Context) {
	serviceType := c.Query("serviceType")
	district := c.Query("district")
	if serviceType == "" || district == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serviceType and district query params are required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := h.Hub.Subscribe(serviceType, district)
	defer h.Hub.Unsubscribe(sub)

	// Drain the read side so we notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				h.Logger.Debug("websocket write failed, dropping client",
					zap.String("serviceType", serviceType),
					zap.String("district", district),
					zap.Error(err))
				return
			}
		}
	}
}
