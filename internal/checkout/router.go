package checkout

import (
	"github.com/gin-gonic/gin"
)

func SetupCheckoutRoutes(rg *gin.RouterGroup, controller *Controller) {
	carts := rg.Group("/carts")
	{
		carts.GET("/:id", controller.GetCart)          // GET /api/v1/carts/:id
		carts.POST("/abandon", controller.AbandonCart) // POST /api/v1/carts/abandon
	}

	checkout := rg.Group("/checkout")
	{
		checkout.POST("/intent", controller.CreateIntent) // POST /api/v1/checkout/intent
		checkout.POST("/finalize", controller.Finalize)   // POST /api/v1/checkout/finalize
	}

	payments := rg.Group("/payments")
	{
		payments.POST("/webhook", controller.PaymentWebhook) // POST /api/v1/payments/webhook
	}

	tickets := rg.Group("/tickets")
	{
		tickets.GET("/:id/qr", controller.GetTicketQR) // GET /api/v1/tickets/:id/qr
	}
}
