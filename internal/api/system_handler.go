package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/response"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SweepRunner runs one expiration sweep.
type SweepRunner interface {
	RunSweep(ctx context.Context) (int, error)
}

type SystemHandler struct {
	db      Pinger
	sweeper SweepRunner
}

func NewSystemHandler(db Pinger, sweeper SweepRunner) *SystemHandler {
	return &SystemHandler{db: db, sweeper: sweeper}
}

// Health reports 200 when the database answers a ping.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Sweep runs an expiration sweep on demand (admin only).
func (h *SystemHandler) Sweep(c *gin.Context) {
	released, err := h.sweeper.RunSweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}
