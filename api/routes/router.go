// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"cineseat/internal/checkout"
	"cineseat/internal/inventory"
	"cineseat/internal/notifications"
	"cineseat/internal/sessions"
	"cineseat/internal/shared/config"
	"cineseat/internal/shared/database"
	"cineseat/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.TicketProducer

	// built during SetupRoutes, kept for the janitor
	inventoryRepo inventory.Repository
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.TicketProducer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
	}
}

// SetupRoutes configures all application routes and wires the services
// together. Sessions, inventory and checkout depend on each other through
// narrow interfaces; the concrete services are injected here after all three
// exist.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	cacheService := cache.NewService(r.db.GetRedisClient())

	sessionRepo := sessions.NewRepository(r.db.GetPostgreSQL())
	sessionService := sessions.NewService(sessionRepo, cacheService)

	r.inventoryRepo = inventory.NewRepository(r.db.GetPostgreSQL())
	inventoryService := inventory.NewService(r.inventoryRepo, cacheService, r.config.Holds, r.config.Redis.StaleWindow)

	checkoutRepo := checkout.NewRepository(r.db.GetPostgreSQL())
	provider := checkout.NewProvider(r.config.Payments)
	checkoutService := checkout.NewService(checkoutRepo, provider, r.producer)

	sessionService.SetSeatSeeder(inventoryService)
	inventoryService.SetSessionProvider(sessionService)
	inventoryService.SetCartService(checkoutService)
	inventoryService.SetTicketSource(checkoutService)
	checkoutService.SetSeatService(inventoryService)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		sessions.SetupSessionRoutes(api, sessions.NewController(sessionService))
		inventory.SetupInventoryRoutes(api, inventory.NewController(inventoryService))
		checkout.SetupCheckoutRoutes(api, checkout.NewController(checkoutService))
	}
}

// InventoryRepository exposes the seat repository for the expired-hold
// janitor, which runs outside the HTTP stack.
func (r *Router) InventoryRepository() inventory.Repository {
	return r.inventoryRepo
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cineseat",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cineseat",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
