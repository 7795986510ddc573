package attachment

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/dennik-app/core/internal/models"
	"github.com/dennik-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	svc      *Service
	launcher Launcher
	logger   *zap.Logger
}

func NewHandler(svc *Service, launcher Launcher, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, launcher: launcher, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/entries/:id/attachments", h.upload)

	atts := rg.Group("/attachments")
	atts.GET("/:id", h.serve)
	atts.DELETE("/:id", h.delete)
	atts.POST("/:id/open", h.open)
	atts.POST("/:id/open_folder", h.openFolder)
}

func (h *Handler) upload(c *gin.Context) {
	// A request without a file part still goes through Upload so the entry
	// gate answers first.
	fh, _ := c.FormFile("file")

	att, err := h.svc.Upload(c.Param("id"), fh)
	if err != nil {
		var badExt *DisallowedExtensionError
		switch {
		case errors.Is(err, ErrEntryNotFound):
			response.NotFoundMsg(c, err.Error())
		case errors.Is(err, ErrNoFile), errors.Is(err, ErrEmptyFile),
			errors.Is(err, ErrFileTooLarge), errors.As(err, &badExt):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	h.logger.Info("attachment stored",
		zap.String("entry_id", att.EntryID),
		zap.String("filename", att.FileName),
		zap.Int64("size", att.FileSize),
	)
	response.OK(c, att)
}

// serve streams the attachment back. PDFs render inline with byte-range
// support unless ?download=1; everything else is a plain download. A range
// the file cannot satisfy degrades to the full file.
func (h *Handler) serve(c *gin.Context) {
	att, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if att == nil {
		response.NotFoundMsg(c, "attachment not found")
		return
	}

	path := h.svc.FilePath(att)
	info, err := os.Stat(path)
	if err != nil {
		response.NotFoundMsg(c, "attachment file not found")
		return
	}

	isPDF := strings.Contains(strings.ToLower(att.MimeType), "pdf")
	forceDownload := c.Query("download") == "1"

	if !isPDF || forceDownload {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.OriginalName))
		c.Header("Content-Type", att.MimeType)
		c.Request.Header.Del("Range")
		c.File(path)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", att.OriginalName))
	c.Header("Content-Type", att.MimeType)
	c.Header("Accept-Ranges", "bytes")

	size := info.Size()
	if start, end, ok := parseRange(c.GetHeader("Range"), size); ok {
		h.servePartial(c, path, start, end, size)
		return
	}

	// A range the file cannot satisfy degrades to the whole file, so the
	// stdlib range handling in ServeFile must not see the header.
	c.Request.Header.Del("Range")
	c.File(path)
}

func (h *Handler) servePartial(c *gin.Context, path string, start, end, size int64) {
	f, err := os.Open(path)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		response.InternalError(c, err)
		return
	}

	length := end - start + 1
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	c.Header("Content-Length", strconv.FormatInt(length, 10))
	c.Status(http.StatusPartialContent)
	_, _ = io.CopyN(c.Writer, f, length)
}

func (h *Handler) open(c *gin.Context) {
	att, path, ok := h.resolveFile(c)
	if !ok {
		return
	}
	if err := h.launcher.OpenFile(path, att.MimeType); err != nil {
		if errors.Is(err, ErrNoViewer) {
			response.ServiceUnavailable(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "attachment opened")
}

func (h *Handler) openFolder(c *gin.Context) {
	_, _, ok := h.resolveFile(c)
	if !ok {
		return
	}
	if err := h.launcher.OpenFolder(h.svc.UploadDir()); err != nil {
		if errors.Is(err, ErrNoViewer) {
			response.ServiceUnavailable(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "folder opened")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "attachment not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "attachment deleted")
}

// resolveFile loads the attachment row and verifies its file exists,
// responding on failure.
func (h *Handler) resolveFile(c *gin.Context) (*models.AttachmentModel, string, bool) {
	att, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return nil, "", false
	}
	if att == nil {
		response.NotFoundMsg(c, "attachment not found")
		return nil, "", false
	}
	path := h.svc.FilePath(att)
	if _, err := os.Stat(path); err != nil {
		response.NotFoundMsg(c, "attachment file not found")
		return nil, "", false
	}
	return att, path, true
}
