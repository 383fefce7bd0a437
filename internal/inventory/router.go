package inventory

import (
	"github.com/gin-gonic/gin"
)

func SetupInventoryRoutes(rg *gin.RouterGroup, controller *Controller) {
	seats := rg.Group("/seats")
	{
		seats.POST("/hold", controller.HoldSeats)       // POST /api/v1/seats/hold
		seats.POST("/release", controller.ReleaseSeats) // POST /api/v1/seats/release
	}

	// Seat map lives under the session it projects.
	rg.GET("/sessions/:id/seats", controller.GetSeatMap) // GET /api/v1/sessions/:id/seats
}
