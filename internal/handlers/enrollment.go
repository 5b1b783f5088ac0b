package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/requestdata"
	"github.com/coursebridge/coursebridge-backend/internal/services"
)

type EnrollmentHandler struct {
	log               *logger.Logger
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(log *logger.Logger, enrollmentService services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:               log.With("handler", "EnrollmentHandler"),
		enrollmentService: enrollmentService,
	}
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
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

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "enroll_failed", err)
		return
	}
	RespondCreated(c, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) ListMyCourses(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	enrollments, err := h.enrollmentService.ListMyCourses(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("ListMyCourses failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_enrollments_failed", err)
		return
	}
	RespondOK(c, gin.H{"enrollments": enrollments})
}
