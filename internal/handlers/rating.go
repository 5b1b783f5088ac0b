package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/requestdata"
	"github.com/coursebridge/coursebridge-backend/internal/services"
)

type RatingHandler struct {
	log           *logger.Logger
	ratingService services.RatingService
}

func NewRatingHandler(log *logger.Logger, ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{
		log:           log.With("handler", "RatingHandler"),
		ratingService: ratingService,
	}
}

func (h *RatingHandler) RateCourse(c *gin.Context) {
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

	var req struct {
		Stars   int    `json:"stars"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	rating, err := h.ratingService.RateCourse(c.Request.Context(), rd.UserID, courseID, req.Stars, req.Comment)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "rate_course_failed", err)
		return
	}
	RespondCreated(c, gin.H{"rating": rating})
}

func (h *RatingHandler) ListCourseRatings(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	ratings, err := h.ratingService.ListCourseRatings(c.Request.Context(), courseID)
	if err != nil {
		h.log.Error("ListCourseRatings failed", "course_id", courseID, "error", err)
		RespondError(c, http.StatusInternalServerError, "load_ratings_failed", err)
		return
	}
	RespondOK(c, gin.H{"ratings": ratings})
}
