package pkg

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      interface{}     `json:"data,omitempty"`
	Error     *ErrorInfo      `json:"error,omitempty"`
	Meta      *PaginationMeta `json:"meta,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ErrorInfo represents error information
type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// PagedResponse sends a successful response with pagination metadata
func PagedResponse(c *gin.Context, message string, data interface{}, meta PaginationMeta) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      &meta,
		Timestamp: time.Now().UTC(),
	})
}

// ErrorResponse sends an error response for any error, mapping AppErrors to
// their status codes and everything else to 500.
func ErrorResponse(c *gin.Context, err error) {
	if appErr, ok := IsAppError(err); ok {
		c.JSON(appErr.StatusCode, APIResponse{
			Success: false,
			Message: "Request failed",
			Error: &ErrorInfo{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			},
			Timestamp: time.Now().UTC(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Message: "Request failed",
		Error: &ErrorInfo{
			Code:    ErrInternalServer.Code,
			Message: ErrInternalServer.Message,
		},
		Timestamp: time.Now().UTC(),
	})
}
