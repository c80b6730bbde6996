package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/hotdesk-backend/internal/auth"
	"github.com/nekogravitycat/hotdesk-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/hotdesk-backend/internal/booking/http"
	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
	deskHttp "github.com/nekogravitycat/hotdesk-backend/internal/desk/http"
	"github.com/nekogravitycat/hotdesk-backend/internal/location"
	locHttp "github.com/nekogravitycat/hotdesk-backend/internal/location/http"
	"github.com/nekogravitycat/hotdesk-backend/internal/metrics"
	"github.com/nekogravitycat/hotdesk-backend/internal/user"
	userHttp "github.com/nekogravitycat/hotdesk-backend/internal/user/http"
)

// Config holds everything the router needs to register its routes.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	TimeZone     *time.Location

	UserService    user.Service
	LocService     location.Service
	DeskService    desk.Service
	BookingService booking.Service
	JWTManager     *auth.JWTManager

	DB      Pinger
	Sweeper SweepRunner
	// Metrics is nil when metrics are disabled; /metrics is then not served.
	Metrics *metrics.Metrics
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.GinMiddleware())
	}

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // Web front-end
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user is an admin.
	adminMiddleware := RequireAdmin(cfg.UserService)
	// resolveAdmin: Records the admin flag for handlers that treat admins differently.
	resolveAdmin := ResolveAdmin(cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	locHandler := locHttp.NewHandler(cfg.LocService)
	deskHandler := deskHttp.NewHandler(cfg.DeskService, cfg.TimeZone)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	systemHandler := NewSystemHandler(cfg.DB, cfg.Sweeper)

	r.GET("/healthz", systemHandler.Health)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		locHttp.RegisterRoutes(v1, locHandler, authMiddleware, adminMiddleware)
		deskHttp.RegisterRoutes(v1, deskHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, resolveAdmin, adminMiddleware)

		v1.POST("/admin/sweep", authMiddleware, adminMiddleware, systemHandler.Sweep)
	}

	return r
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
