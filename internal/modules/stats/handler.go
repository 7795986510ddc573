package stats

import (
	"strconv"
	"strings"

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
	rg.GET("/stats", h.overview)
}

func (h *Handler) overview(c *gin.Context) {
	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			year = v
		}
	}

	overview, err := h.svc.Overview(year)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, overview)
}
