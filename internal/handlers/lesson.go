package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/requestdata"
	"github.com/coursebridge/coursebridge-backend/internal/services"
)

type LessonHandler struct {
	lessonService services.LessonService
}

func NewLessonHandler(lessonService services.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

func (h *LessonHandler) CreateLesson(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}

	var input services.LessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	lesson, err := h.lessonService.CreateLesson(c.Request.Context(), rd.UserID, courseID, input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_lesson_failed", err)
		return
	}
	RespondCreated(c, gin.H{"lesson": lesson})
}

func (h *LessonHandler) ListLessons(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	lessons, err := h.lessonService.ListLessons(c.Request.Context(), courseID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_lessons_failed", err)
		return
	}
	RespondOK(c, gin.H{"lessons": lessons})
}

func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_lesson_id", err)
		return
	}

	var input services.LessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	lesson, err := h.lessonService.UpdateLesson(c.Request.Context(), rd.UserID, lessonID, input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "update_lesson_failed", err)
		return
	}
	RespondOK(c, gin.H{"lesson": lesson})
}

func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_lesson_id", err)
		return
	}
	if err := h.lessonService.DeleteLesson(c.Request.Context(), rd.UserID, lessonID); err != nil {
		RespondError(c, http.StatusBadRequest, "delete_lesson_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": lessonID})
}
