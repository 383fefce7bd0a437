package sessions

import (
	"net/http"

	"cineseat/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func (c *Controller) CreateSession(ctx *gin.Context) {
	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	session, err := c.service.CreateSession(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Session created successfully", session, nil)
}

func (c *Controller) GetSession(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Session ID is required", nil, "missing session ID")
		return
	}

	session, err := c.service.GetSession(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session retrieved successfully", session, nil)
}

func (c *Controller) ListSessions(ctx *gin.Context) {
	var q ListSessionsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	sessions, err := c.service.ListSessions(ctx.Request.Context(), q)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sessions retrieved successfully", sessions, nil)
}
