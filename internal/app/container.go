package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotdesk-backend/internal/api"
	"github.com/nekogravitycat/hotdesk-backend/internal/auth"
	"github.com/nekogravitycat/hotdesk-backend/internal/booking"
	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
	"github.com/nekogravitycat/hotdesk-backend/internal/location"
	"github.com/nekogravitycat/hotdesk-backend/internal/metrics"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/clock"
	"github.com/nekogravitycat/hotdesk-backend/internal/sweeper"
	"github.com/nekogravitycat/hotdesk-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	DBPool         *pgxpool.Pool
	JWTSecret      string
	JWTTTL         time.Duration
	BcryptCost     int
	TimeZone       *time.Location
	SweepInterval  time.Duration
	MetricsEnabled bool
	Logger         *slog.Logger

	// Clock defaults to the real clock.
	Clock clock.Clock
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	JWTManager  *auth.JWTManager
	UserService user.Service
	Sweeper     *sweeper.Sweeper
	Metrics     *metrics.Metrics
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	zone := cfg.TimeZone
	if zone == nil {
		zone = time.Local
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.RegisterPool(cfg.DBPool)
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, log.With("component", "user"))

	// Location Module
	locRepo := location.NewPgxRepository(cfg.DBPool)
	locService := location.NewService(locRepo, log.With("component", "location"))

	// Desk Module
	deskRepo := desk.NewPgxRepository(cfg.DBPool)
	deskService := desk.NewService(deskRepo, locService, log.With("component", "desk"))

	// Booking Module
	bookingStore := booking.NewPgxStore(cfg.DBPool)
	bookingService := booking.NewService(bookingStore, clk, zone, log.With("component", "booking"), m)

	// Expiration Sweeper
	sw := sweeper.New(bookingStore, bookingService, clk, zone, cfg.SweepInterval, log.With("component", "sweeper"), m)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		TimeZone:       zone,
		UserService:    userService,
		LocService:     locService,
		DeskService:    deskService,
		BookingService: bookingService,
		JWTManager:     jwtManager,
		DB:             cfg.DBPool,
		Sweeper:        sw,
		Metrics:        m,
	})

	return &Container{
		Router:      router,
		JWTManager:  jwtManager,
		UserService: userService,
		Sweeper:     sw,
		Metrics:     m,
	}
}
