package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/config"
	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/handlers"
	"github.com/smarttransit/bus-tracking-backend/internal/logger"
	"github.com/smarttransit/bus-tracking-backend/internal/metrics"
	"github.com/smarttransit/bus-tracking-backend/internal/middleware"
	"github.com/smarttransit/bus-tracking-backend/internal/publisher"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
	"github.com/smarttransit/bus-tracking-backend/pkg/jwt"
	"github.com/smarttransit/bus-tracking-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	closeLog, err := logger.Setup(cfg.Server)
	if err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}
	log := logrus.StandardLogger()

	log.Info("Starting SmartTransit Bus Tracking Backend")
	log.Infof("Version: %s, Build Time: %s", version, buildTime)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	log.Info("Connecting to database...")
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.NewConnection(connectCtx, cfg.Database)
	cancelConnect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.WithField("driver", cfg.Database.Driver).Info("Database connection established")

	collector := metrics.NewCollector()

	// Live fan-out is optional. The service keeps a nil interface when NATS
	// is not configured or unreachable.
	var (
		natsPublisher     *publisher.NATSPublisher
		locationPublisher services.LocationPublisher
	)
	if cfg.NATS.URL != "" {
		natsPublisher, err = publisher.NewNATSPublisher(cfg.NATS, collector)
		if err != nil {
			log.WithError(err).Warn("NATS unavailable, live location fan-out disabled")
		} else {
			locationPublisher = natsPublisher
			log.WithField("subject_prefix", cfg.NATS.SubjectPrefix).Info("NATS publisher connected")
		}
	}

	// Repositories
	userRepo := database.NewUserRepository(db)
	busRepo := database.NewBusRepository(db)
	routeRepo := database.NewRouteRepository(db)
	locationRepo := database.NewLocationRepository(db)
	activityRepo := database.NewActivityLogRepository(db)
	refreshTokenRepo := database.NewRefreshTokenRepository(db)
	analyticsRepo := database.NewAnalyticsRepository(db)

	// Services
	log.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	activityService := services.NewActivityService(activityRepo, cfg.Security.EnableAuditLog, cfg.Tracking.HistoryMaxLimit)
	userService := services.NewUserService(userRepo, activityService, validator.NewPhoneValidator(), cfg.Security.BcryptCost)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, userService, activityService, jwtService)
	cronService := services.NewCronService(cfg.Tracking, locationRepo, activityRepo, refreshTokenRepo, collector)

	h := &handlers.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Buses:     handlers.NewBusHandler(services.NewBusService(busRepo)),
		Routes:    handlers.NewRouteHandler(services.NewRouteService(routeRepo)),
		Users:     handlers.NewUserHandler(userService),
		Drivers:   handlers.NewDriverHandler(services.NewDriverService(busRepo, routeRepo, userRepo)),
		Locations: handlers.NewLocationHandler(services.NewLocationService(locationRepo, locationPublisher, collector, cfg.Tracking)),
		Trips:     handlers.NewTripHandler(services.NewTripService(busRepo, collector)),
		Logs:      handlers.NewLogHandler(activityService),
		Analytics: handlers.NewAnalyticsHandler(services.NewAnalyticsService(analyticsRepo)),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(log))
	}
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Timeout(cfg.Database.QueryTimeout))
	router.Use(cors.New(corsConfig(cfg.CORS)))

	h.RegisterRoutes(router, middleware.AuthMiddleware(jwtService), db, collector.Handler())

	// Expired refresh tokens are always swept; location and activity
	// pruning only run when their retention is configured.
	if err := cronService.Start(); err != nil {
		log.Fatalf("Failed to start cron service: %v", err)
	}
	log.WithFields(logrus.Fields(cronService.GetJobStatus())).Debug("Scheduled jobs")
	if !cfg.RetentionEnabled() {
		log.Info("Location and activity retention disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	cronService.Stop()

	if natsPublisher != nil {
		if err := natsPublisher.Close(); err != nil {
			log.WithError(err).Warn("Failed to drain NATS connection")
		}
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Warn("Failed to close database")
	}

	log.Info("Server exited")
	if err := closeLog(); err != nil {
		logrus.WithError(err).Warn("Failed to close log file")
	}
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowCredentials = true
	return c
}
