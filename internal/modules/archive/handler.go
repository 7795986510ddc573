package archive

import (
	"errors"

	"github.com/dennik-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/archive")
	grp.GET("/export", h.export)
	grp.POST("/upload-to-s3", h.uploadToS3)
}

func (h *Handler) export(c *gin.Context) {
	artifact, err := h.svc.Export()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer artifact.Cleanup()

	c.FileAttachment(artifact.Path, artifact.Filename)
}

func (h *Handler) uploadToS3(c *gin.Context) {
	url, err := h.svc.UploadToS3(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrS3NotConfigured) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"url": url})
}
