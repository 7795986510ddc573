package entry

import (
	"bytes"
	"errors"

	"github.com/dennik-app/core/internal/pkg/pagination"
	"github.com/dennik-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/entries")
	entries.GET("", h.list)
	entries.POST("", h.create)
	entries.GET("/:id", h.get)
	entries.GET("/:id/html", h.renderHTML)
	entries.PUT("/:id", h.update)
	entries.DELETE("/:id", h.delete)

	rg.GET("/years", h.years)
}

func (h *Handler) list(c *gin.Context) {
	filters := parseListFilters(
		c.Query("year"),
		c.Query("month"),
		c.Query("category_id"),
		c.Query("search"),
	)

	entries, page, err := h.svc.List(filters, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, entries, page)
}

func (h *Handler) years(c *gin.Context) {
	years, err := h.svc.Years()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, years)
}

func (h *Handler) get(c *gin.Context) {
	e, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if e == nil {
		response.NotFoundMsg(c, "entry not found")
		return
	}
	response.OK(c, e)
}

// renderHTML converts the entry content from Markdown to HTML for read-only
// display.
func (h *Handler) renderHTML(c *gin.Context) {
	e, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if e == nil {
		response.NotFoundMsg(c, "entry not found")
		return
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(e.Content), &buf); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"id": e.ID, "title": e.Title, "html": buf.String()})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateEntryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	e, err := h.svc.Create(&dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			response.NotFoundMsg(c, err.Error())
		case errors.Is(err, ErrBadDate), errors.Is(err, ErrBadTime):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, e)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateEntryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	e, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			response.NotFoundMsg(c, err.Error())
		case errors.Is(err, ErrBadDate), errors.Is(err, ErrBadTime),
			errors.Is(err, ErrTitleRequired), errors.Is(err, ErrContentRequired):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	if e == nil {
		response.NotFoundMsg(c, "entry not found")
		return
	}
	response.OK(c, e)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "entry not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "entry deleted")
}
