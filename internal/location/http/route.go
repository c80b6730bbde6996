package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *LocationHandler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/locations")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:location", h.Get)

		group.POST("", adminMiddleware, h.Create)
		group.PATCH("/:location", adminMiddleware, h.Rename)
		group.DELETE("/:location", adminMiddleware, h.Delete)
	}
}
