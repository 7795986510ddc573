package setting

import (
	"errors"

	"github.com/dennik-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type setSettingDTO struct {
	Value string `json:"value"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	settings.GET("", h.list)
	settings.GET("/:key", h.get)
	settings.PUT("/:key", h.set)
	settings.DELETE("/:key", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	settings, err := h.svc.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, settings)
}

func (h *Handler) get(c *gin.Context) {
	setting, err := h.svc.Get(c.Param("key"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if setting == nil {
		response.NotFoundMsg(c, "setting not found")
		return
	}
	response.OK(c, setting)
}

func (h *Handler) set(c *gin.Context) {
	var dto setSettingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	setting, err := h.svc.Set(c.Param("key"), dto.Value)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, setting)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("key")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "setting not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "setting deleted")
}
