// Package response provides the JSON envelope for operational endpoints
// (health and readiness probes). API handlers return their resource DTOs
// directly and do not use this envelope.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope for probe responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
}

// ErrorData describes a failed probe. Details carries the per-component
// status map so operators can see which dependency is down.
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success writes a 200 envelope around data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Unavailable writes a 503 envelope for a failed readiness check
func Unavailable(c *gin.Context, code, message string, details interface{}) {
	c.JSON(http.StatusServiceUnavailable, Response{
		Success: false,
		Error: &ErrorData{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
