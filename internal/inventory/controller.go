package inventory

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

func (c *Controller) HoldSeats(ctx *gin.Context) {
	var req HoldSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	hold, err := c.service.HoldSeats(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats held successfully", hold, nil)
}

func (c *Controller) ReleaseSeats(ctx *gin.Context) {
	var req ReleaseSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	released, err := c.service.ReleaseSeats(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats released successfully", released, nil)
}

func (c *Controller) GetSeatMap(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Session ID is required", nil, "missing session ID")
		return
	}

	ensure := ctx.Query("ensure") == "true"
	seatMap, err := c.service.SeatMap(ctx.Request.Context(), id, ensure)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}
