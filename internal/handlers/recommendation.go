package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/requestdata"
	"github.com/coursebridge/coursebridge-backend/internal/services"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

// GET /api/courses/:id/recommendations
//
// Always answers 200 with a data array. A malformed or unknown course id, or
// any load failure, yields an empty array: the recommendations strip is
// supplementary UI and must never surface an error to the client.
func (h *RecommendationHandler) GetCourseRecommendations(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondOK(c, gin.H{"data": []services.ScoredCourse{}})
		return
	}

	var learnerID *uuid.UUID
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
		id := rd.UserID
		learnerID = &id
	}

	recommendations := h.recSvc.Recommend(c.Request.Context(), courseID, learnerID)
	RespondOK(c, gin.H{"data": recommendations})
}
