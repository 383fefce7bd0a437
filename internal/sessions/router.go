package sessions

import (
	"cineseat/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSessionRoutes(rg *gin.RouterGroup, controller *Controller) {
	sessions := rg.Group("/sessions")
	{
		sessions.GET("", controller.ListSessions)   // GET /api/v1/sessions
		sessions.GET("/:id", controller.GetSession) // GET /api/v1/sessions/:id
	}

	admin := rg.Group("/sessions")
	admin.Use(middleware.JWTAuth())
	{
		admin.POST("", controller.CreateSession) // POST /api/v1/sessions
	}
}
