package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carpool/internal/handler"
	"carpool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler    *handler.UserHandler
	RideHandler    *handler.RideHandler
	BookingHandler *handler.BookingHandler
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("/:id", deps.UserHandler.GetUser)
			users.GET("/:id/wallet", deps.UserHandler.GetWallet)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.PostRide)
			rides.GET("/search", deps.RideHandler.SearchRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.GET("/:id/snapshot", deps.RideHandler.GetRideSnapshot)
			rides.GET("/:id/bookings", deps.RideHandler.GetRideBookings)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/complete", deps.RideHandler.CompleteRide)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.CreateBooking)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.POST("/:id/respond", deps.BookingHandler.RespondToBooking)
			bookings.POST("/:id/pay", deps.BookingHandler.PayForBooking)
			bookings.POST("/:id/cancel", deps.BookingHandler.CancelBooking)
		}

		// Passenger routes.
		passengers := v1.Group("/passengers")
		{
			passengers.GET("/:id/bookings", deps.BookingHandler.GetPassengerBookings)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.GET("/:id/rides", deps.RideHandler.GetDriverRides)
			drivers.GET("/:id/earnings", deps.PaymentHandler.GetDriverEarnings)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("/confirm", deps.PaymentHandler.ConfirmPayment)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
		}
	}

	return router
}
