package response

import (
	"net/http"

	"cineseat/internal/shared/utils/fault"

	"github.com/gin-gonic/gin"
)

type StandardApiResponse struct {
	Status     string      `json:"status"`           // "success" or "error"
	StatusCode int         `json:"status_code"`      // HTTP status code
	Message    string      `json:"message"`          // Human-readable message
	Data       interface{} `json:"data,omitempty"`   // Payload for success
	Errors     interface{} `json:"errors,omitempty"` // Stable error code or validation details
}

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a domain fault to its HTTP status and stable code. Errors
// that are not faults are reported as infrastructure failures so callers know
// a blind retry is safe.
func RespondError(c *gin.Context, err error) {
	if f, ok := fault.From(err); ok {
		RespondJSON(c, "error", f.Status, f.Message, nil, f.Code)
		return
	}
	RespondJSON(c, "error", http.StatusInternalServerError, "internal error", nil, err.Error())
}
