package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/services"
)

type ChatHandler struct {
	log         *logger.Logger
	chatService services.ChatService
}

func NewChatHandler(log *logger.Logger, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		log:         log.With("handler", "ChatHandler"),
		chatService: chatService,
	}
}

// GET /api/courses/:id/messages — room history, fetched by clients on load.
// Live traffic flows through the websocket relay instead.
func (h *ChatHandler) ListCourseMessages(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.chatService.History(c.Request.Context(), courseID, limit, offset)
	if err != nil {
		h.log.Error("ListCourseMessages failed", "course_id", courseID, "error", err)
		RespondError(c, http.StatusInternalServerError, "load_messages_failed", err)
		return
	}
	RespondOK(c, gin.H{"messages": messages})
}
