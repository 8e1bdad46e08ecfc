package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/storage"
)

// UploadSigner issues presigned upload URLs.
type UploadSigner interface {
	PresignUpload(ctx context.Context, filename, contentType, folder string) (*storage.PresignedURLResponse, error)
}

type UploadController struct {
	storage UploadSigner
}

func NewUploadController(storage UploadSigner) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder" binding:"required"` // products, news, avatars or gallery
}

// GeneratePresignedURL generates a presigned URL for uploading an image to S3
// POST /api/v1/uploads/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	response, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Filename, req.ContentType, req.Folder)
	if err != nil {
		respondError(c, err, "presign upload")
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"content_type": req.ContentType,
		"folder":       req.Folder,
		"key":          response.Key,
	})

	c.JSON(http.StatusOK, response)
}
