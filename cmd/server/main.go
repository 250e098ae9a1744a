package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carpool/internal/app"
	"carpool/internal/config"
	"carpool/internal/geo"
	"carpool/internal/handler"
	internalRedis "carpool/internal/redis"
	"carpool/internal/repository/postgres"
	"carpool/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, rideService := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Start the departed-ride sweep loop.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Sweep.Enabled {
		go runSweep(sweepCtx, rideService, cfg.Sweep.Interval)
	}

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// runSweep periodically completes rides whose departure time has passed.
func runSweep(ctx context.Context, rideService *service.RideService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			completed, err := rideService.CompleteDeparted(ctx, now)
			if err != nil {
				log.Printf("ride sweep: %v", err)
				continue
			}
			if completed > 0 {
				log.Printf("ride sweep: completed %d departed ride(s)", completed)
			}
		}
	}
}

// wireServer wires all dependencies and returns the HTTP server plus the
// ride service for the sweep loop.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.RideService) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Initialize collaborators.
	geoClient := geo.NewClient(cfg.Geo.APIKey, cfg.Geo.DirectionsURL, cfg.Geo.GeocodeURL, cfg.Geo.Timeout)
	gateway := service.NewMockGateway()

	// Initialize services.
	notificationService := service.NewNotificationService()
	ticketService := service.NewTicketService(notificationService)
	fareCalculator := service.NewFareCalculator(cfg.Fare.Base, cfg.Fare.RatePerKm)
	settlementService := service.NewSettlementService(db, rideRepo, bookingRepo, paymentRepo, userRepo)
	paymentService := service.NewPaymentService(
		paymentRepo, bookingRepo, gateway, settlementService, notificationService,
		cfg.Fare.Currency, cfg.Booking.SettleOnPayment,
	)
	bookingService := service.NewBookingService(
		rideRepo, bookingRepo, paymentRepo, fareCalculator, paymentService,
		ticketService, notificationService, geoClient, lockStore,
		cfg.Booking.ApprovalRequired,
	)
	rideService := service.NewRideService(
		rideRepo, bookingRepo, paymentRepo, fareCalculator, settlementService,
		notificationService, geoClient, geoClient, cacheStore,
	)
	userService := service.NewUserService(userRepo)

	// Initialize handlers.
	userHandler := handler.NewUserHandler(userService)
	rideHandler := handler.NewRideHandler(rideService, bookingService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:    userHandler,
		RideHandler:    rideHandler,
		BookingHandler: bookingHandler,
		PaymentHandler: paymentHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, rideService
}
