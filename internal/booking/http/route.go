package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking and availability routes.
// resolveAdmin marks admins without rejecting other users; requireAdmin rejects non-admins.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, resolveAdmin, requireAdmin gin.HandlerFunc) {
	g.GET("/me/booking", authMiddleware, h.MyBooking)

	group := g.Group("/locations/:location/desks/:desk")
	group.Use(authMiddleware)
	{
		group.POST("/booking", h.Book)
		group.DELETE("/booking", resolveAdmin, h.Unbook)
		group.PUT("/enabled", requireAdmin, h.SetEnabled)
	}
}
