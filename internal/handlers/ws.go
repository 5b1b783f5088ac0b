package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/coursebridge/coursebridge-backend/internal/chathub"
	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/requestdata"
	"github.com/coursebridge/coursebridge-backend/internal/services"
)

// The relay accepts connections from any origin. It carries no authority of
// its own: reading history and writing durable messages go through the
// authenticated REST API.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WSHandler struct {
	log         *logger.Logger
	hub         *chathub.Hub
	chatService services.ChatService
}

func NewWSHandler(log *logger.Logger, hub *chathub.Hub, chatService services.ChatService) *WSHandler {
	return &WSHandler{
		log:         log.With("handler", "WSHandler"),
		hub:         hub,
		chatService: chatService,
	}
}

// GET /ws — upgrade and hand the connection to the hub. Joining rooms and
// sending messages happen over relay frames, not HTTP.
func (h *WSHandler) ServeWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	userID := uuid.Nil
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		userID = rd.UserID
	}

	client := h.hub.NewClient(userID)
	client.Attach(conn, h.log, h.messageSink())
	client.Run()
}

// The sink runs on the pump goroutine after the HTTP handler has returned,
// so it cannot borrow the request context.
func (h *WSHandler) messageSink() chathub.MessageSink {
	return func(senderID uuid.UUID, courseID string, payload json.RawMessage) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return h.chatService.SaveIncoming(ctx, senderID, courseID, payload)
	}
}
