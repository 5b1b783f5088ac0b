package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/repos"
	"github.com/coursebridge/coursebridge-backend/internal/requestdata"
	"github.com/coursebridge/coursebridge-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

func (h *CourseHandler) ListCatalog(c *gin.Context) {
	var filter repos.CatalogFilter
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_category_id", err)
			return
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("level_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_level_id", err)
			return
		}
		filter.LevelID = &id
	}

	courses, err := h.courseService.ListCatalog(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("ListCatalog failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_courses_failed", err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	course, err := h.courseService.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "course_not_found", err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) ListMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	courses, err := h.courseService.ListByInstructor(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("ListMine failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_courses_failed", err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var input services.CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), rd.UserID, input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_course_failed", err)
		return
	}
	RespondCreated(c, gin.H{"course": course})
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
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

	var input services.CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), rd.UserID, courseID, input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "update_course_failed", err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
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
	if err := h.courseService.DeleteCourse(c.Request.Context(), rd.UserID, courseID); err != nil {
		RespondError(c, http.StatusBadRequest, "delete_course_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": courseID})
}
