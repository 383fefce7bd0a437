package checkout

import (
	"net/http"

	"cineseat/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetCart(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Cart ID is required", nil, "missing cart ID")
		return
	}

	cart, err := c.service.GetCart(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cart retrieved successfully", cart, nil)
}

func (c *Controller) AbandonCart(ctx *gin.Context) {
	var req AbandonCartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.service.AbandonCart(ctx.Request.Context(), req); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cart abandoned successfully", nil, nil)
}

func (c *Controller) CreateIntent(ctx *gin.Context) {
	var req CreateIntentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	intent, err := c.service.CreateIntent(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Payment intent created successfully", intent, nil)
}

func (c *Controller) Finalize(ctx *gin.Context) {
	var req FinalizeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.Finalize(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Checkout finalized successfully", result, nil)
}

func (c *Controller) PaymentWebhook(ctx *gin.Context) {
	var req WebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.service.HandleWebhook(ctx.Request.Context(), req); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Webhook processed", nil, nil)
}

func (c *Controller) GetTicketQR(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Ticket ID is required", nil, "missing ticket ID")
		return
	}

	png, err := c.service.TicketQR(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	ctx.Data(http.StatusOK, "image/png", png)
}
