package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers desk routes nested under their location.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/locations/:location/desks")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:desk", h.Get)

		group.POST("", adminMiddleware, h.Create)
		group.DELETE("/:desk", adminMiddleware, h.Delete)
	}
}
