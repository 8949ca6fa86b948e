package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/RobelK1738/Buddys-Brain/internal/service"
	"github.com/RobelK1738/Buddys-Brain/internal/storage"
)

// maxUploadBytes bounds the accepted file size.
const maxUploadBytes = 50 << 20

var documentExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// UploadHandler handles file-based resource creation.
type UploadHandler struct {
	ingestService *service.IngestService
	storage       storage.ObjectStorage
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(ingestService *service.IngestService, store storage.ObjectStorage) *UploadHandler {
	return &UploadHandler{
		ingestService: ingestService,
		storage:       store,
	}
}

// Upload handles POST /upload. The multipart form carries the file plus the
// resource metadata; the media type is classified from the file extension.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing file: " + err.Error(),
		})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("File exceeds limit of %d bytes", maxUploadBytes),
		})
		return
	}

	ext := strings.ToLower(path.Ext(fileHeader.Filename))
	mediaType, err := classifyUpload(ext)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to open file: " + err.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read file: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	key := uuid.New().String() + ext
	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store file: " + err.Error(),
		})
		return
	}

	input := &service.IngestInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Course:      c.PostForm("course"),
		MediaType:   mediaType,
		MediaLink:   h.storage.GetURL(key),
		Data:        data,
		Filename:    fileHeader.Filename,
	}
	if input.Title == "" {
		input.Title = fileHeader.Filename
	}

	resource, err := h.ingestService.Ingest(ctx, input)
	if err != nil {
		// The record never existed; clean up the stored object.
		_ = h.storage.Delete(ctx, key)
		c.JSON(ingestStatus(err), gin.H{
			"error": "Failed to create resource: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// classifyUpload maps a file extension to the media type it is ingested as.
func classifyUpload(ext string) (domain.MediaType, error) {
	switch {
	case documentExtensions[ext]:
		return domain.MediaTypeDocument, nil
	case imageExtensions[ext]:
		return domain.MediaTypeImage, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
}
