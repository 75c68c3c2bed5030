// Package responses provides standardized HTTP response helpers for the API.
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the single error shape returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Success responds with a 200 OK status and the provided data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// InBandError reports a failure inside a 200 OK response. Browser clients
// of /voice_to_voice read the "error" key instead of the status code.
func InBandError(c *gin.Context, message string) {
	c.JSON(http.StatusOK, ErrorResponse{Error: message})
}

// NotFound responds with a 404 Not Found status and error message.
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// AbortInternalServerError responds with a 500 Internal Server Error status
// and stops the handler chain.
func AbortInternalServerError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}
