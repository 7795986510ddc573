package app

import (
	"net/http"

	"github.com/dennik-app/core/internal/modules/archive"
	"github.com/dennik-app/core/internal/modules/attachment"
	"github.com/dennik-app/core/internal/modules/category"
	"github.com/dennik-app/core/internal/modules/entry"
	"github.com/dennik-app/core/internal/modules/setting"
	"github.com/dennik-app/core/internal/modules/stats"
	"github.com/dennik-app/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes() {
	r := a.router
	db := a.db

	r.NoRoute(func(c *gin.Context) {
		response.NotFoundMsg(c, "not found")
	})
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"ok": 0, "code": http.StatusMethodNotAllowed, "message": "method not allowed"})
	})

	api := r.Group("/api")

	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })

	categorySvc := category.NewService(db)
	entrySvc := entry.NewService(db, categorySvc, a.cfg.UploadDir())

	entry.NewHandler(entrySvc).RegisterRoutes(api)
	category.NewHandler(categorySvc).RegisterRoutes(api)
	attachment.NewHandler(attachment.NewService(db, a.cfg), a.launcher, a.logger).RegisterRoutes(api)
	stats.NewHandler(stats.NewService(db)).RegisterRoutes(api)
	archive.NewHandler(archive.NewService(db, a.cfg, a.logger)).RegisterRoutes(api)
	setting.NewHandler(setting.NewService(db)).RegisterRoutes(api)
}
