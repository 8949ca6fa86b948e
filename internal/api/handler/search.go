package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/RobelK1738/Buddys-Brain/internal/service"
)

// SearchHandler handles semantic search endpoints.
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

// Search handles POST /search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), req.Query)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInputTooLarge) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error": "Search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
