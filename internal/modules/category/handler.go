package category

import (
	"errors"

	"github.com/dennik-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	cats := rg.Group("/categories")
	cats.GET("", h.listNested)
	cats.GET("/flat", h.listFlat)
	cats.GET("/main", h.listMain)
	cats.GET("/:id/subcategories", h.listSubcategories)
	cats.POST("", h.create)
	cats.PUT("/:id", h.update)
	cats.DELETE("/:id", h.delete)
}

func (h *Handler) listNested(c *gin.Context) {
	cats, err := h.svc.ListNested()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, cats)
}

func (h *Handler) listFlat(c *gin.Context) {
	cats, err := h.svc.ListFlat()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, cats)
}

func (h *Handler) listMain(c *gin.Context) {
	cats, err := h.svc.ListMain()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, cats)
}

func (h *Handler) listSubcategories(c *gin.Context) {
	cats, err := h.svc.ListSubcategories(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrParentNotFound) {
			response.NotFoundMsg(c, "category not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, cats)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cat, err := h.svc.Create(&dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrParentNotFound):
			response.NotFoundMsg(c, err.Error())
		case errors.Is(err, ErrNameRequired), errors.Is(err, ErrTooDeep), errors.Is(err, ErrDuplicateName):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, cat)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cat, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrDuplicateName) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if cat == nil {
		response.NotFoundMsg(c, "category not found")
		return
	}
	response.OK(c, cat)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Param("id"))
	if err != nil {
		var blocked *BlockedDeleteError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFoundMsg(c, "category not found")
		case errors.As(err, &blocked):
			response.BadRequest(c, blocked.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Message(c, "category deleted")
}
