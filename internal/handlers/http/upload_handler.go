package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"huddle/internal/core/domain"
	"huddle/pkg/errors"
	"huddle/pkg/utils"
	"huddle/pkg/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadHandler stores shared file blobs on local disk and serves their
// metadata back. The websocket side only ever relays the metadata; the blob
// itself travels over plain HTTP.
type UploadHandler struct {
	dir          string
	maxSizeBytes int64
	allowedTypes []string
	logger       *zap.SugaredLogger
}

func NewUploadHandler(dir string, maxSizeBytes int64, allowedTypes []string, logger *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{
		dir:          dir,
		maxSizeBytes: maxSizeBytes,
		allowedTypes: allowedTypes,
		logger:       logger,
	}
}

func (h *UploadHandler) SetupRoutes(router *gin.Engine) {
	router.POST("/upload", h.Upload)
	router.Static("/uploads", h.dir)
}

// categoryFor sorts uploads into a subdirectory by coarse media type.
func categoryFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	case strings.HasPrefix(mimeType, "image/"):
		return "images"
	case strings.HasPrefix(mimeType, "video/"):
		return "videos"
	default:
		return "documents"
	}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.Error(errors.NewInvalidInputError("file field is required"))
		return
	}

	if file.Size > h.maxSizeBytes {
		c.Error(errors.NewPayloadTooLargeError("file exceeds the upload size limit"))
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if err := validation.ValidateMimeType(mimeType, h.allowedTypes); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}

	category := categoryFor(mimeType)
	name := utils.GenerateUploadName(file.Filename)

	destDir := filepath.Join(h.dir, category)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		h.logger.Errorw("failed to create upload directory", "dir", destDir, "error", err)
		c.Error(errors.NewInternalError("failed to store file"))
		return
	}

	if err := c.SaveUploadedFile(file, filepath.Join(destDir, name)); err != nil {
		h.logger.Errorw("failed to store uploaded file", "name", name, "error", err)
		c.Error(errors.NewInternalError("failed to store file"))
		return
	}

	meta := domain.FileMeta{
		URL:          "/uploads/" + category + "/" + name,
		Filename:     name,
		OriginalName: file.Filename,
		MimeType:     mimeType,
		Size:         file.Size,
	}

	h.logger.Infow("file uploaded", "name", name, "mime_type", mimeType, "size", file.Size)
	c.JSON(http.StatusOK, meta)
}
