package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/RobelK1738/Buddys-Brain/internal/repository"
	"github.com/RobelK1738/Buddys-Brain/internal/service"
	"github.com/RobelK1738/Buddys-Brain/internal/storage"
)

// ResourceHandler handles resource CRUD endpoints.
type ResourceHandler struct {
	ingestService *service.IngestService
	resources     *repository.ResourceRepository
	storage       storage.ObjectStorage
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler(
	ingestService *service.IngestService,
	resources *repository.ResourceRepository,
	store storage.ObjectStorage,
) *ResourceHandler {
	return &ResourceHandler{
		ingestService: ingestService,
		resources:     resources,
		storage:       store,
	}
}

// createResourceRequest is the JSON body for link-based resource creation.
type createResourceRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Course      string `json:"course"`
	MediaType   string `json:"media_type" binding:"required"`
	MediaLink   string `json:"media_link" binding:"required"`
}

func (r *createResourceRequest) toInput() *service.IngestInput {
	return &service.IngestInput{
		Title:       r.Title,
		Description: r.Description,
		Course:      r.Course,
		MediaType:   domain.MediaType(r.MediaType),
		MediaLink:   r.MediaLink,
	}
}

// CreateResource handles POST /resources.
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	resource, err := h.ingestService.Ingest(c.Request.Context(), req.toInput())
	if err != nil {
		c.JSON(ingestStatus(err), gin.H{
			"error": "Failed to create resource: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// CreateResourcesBulk handles POST /resources/bulk. The body is a JSON array
// of resources; the whole batch is rejected if any entry is invalid.
func (h *ResourceHandler) CreateResourcesBulk(c *gin.Context) {
	var reqs []createResourceRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	inputs := make([]*service.IngestInput, len(reqs))
	for i := range reqs {
		inputs[i] = reqs[i].toInput()
	}

	resources, err := h.ingestService.IngestBatch(c.Request.Context(), inputs)
	if err != nil {
		c.JSON(ingestStatus(err), gin.H{
			"error": "Failed to create resources: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"resources": resources,
		"count":     len(resources),
	})
}

// ListResources handles GET /resources.
func (h *ResourceHandler) ListResources(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))

	resources, err := h.resources.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list resources: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resources": resources,
		"count":     len(resources),
	})
}

// CountResources handles GET /numResources.
func (h *ResourceHandler) CountResources(c *gin.Context) {
	count, err := h.resources.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count resources: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"num_resources": count,
	})
}

// GetResource handles GET /resources/:id.
func (h *ResourceHandler) GetResource(c *gin.Context) {
	id := c.Param("id")

	resource, err := h.resources.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Resource not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get resource: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resource)
}

// DeleteResource handles DELETE /resources/:id. A file uploaded through this
// service is removed from object storage along with the record.
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	resource, err := h.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Resource not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get resource: " + err.Error(),
		})
		return
	}

	if err := h.ingestService.Delete(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete resource: " + err.Error(),
		})
		return
	}

	if key, ok := h.storage.KeyFromURL(resource.MediaLink); ok {
		// The record is already gone; an orphaned object is not worth
		// failing the request over.
		_ = h.storage.Delete(ctx, key)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Resource deleted",
		"id":      id,
	})
}

// ingestStatus maps ingestion errors to HTTP status codes.
func ingestStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedMediaType),
		errors.Is(err, domain.ErrBatchTooLarge),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrUnsupportedImageFormat),
		errors.Is(err, domain.ErrInputTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
