package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursebridge/coursebridge-backend/internal/repos"
)

// TaxonomyHandler serves the category and difficulty-level reference data
// the catalog UI filters on.
type TaxonomyHandler struct {
	categoryRepo repos.CategoryRepo
	levelRepo    repos.LevelRepo
}

func NewTaxonomyHandler(categoryRepo repos.CategoryRepo, levelRepo repos.LevelRepo) *TaxonomyHandler {
	return &TaxonomyHandler{categoryRepo: categoryRepo, levelRepo: levelRepo}
}

func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryRepo.List(c.Request.Context(), nil)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_categories_failed", err)
		return
	}
	RespondOK(c, gin.H{"categories": categories})
}

func (h *TaxonomyHandler) ListLevels(c *gin.Context) {
	levels, err := h.levelRepo.List(c.Request.Context(), nil)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_levels_failed", err)
		return
	}
	RespondOK(c, gin.H{"levels": levels})
}
