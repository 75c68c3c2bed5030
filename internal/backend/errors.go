package backend

import (
	"fmt"
	"net/http"
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 1024

// APIError represents a non-success response from the voice backend with the
// HTTP status code preserved.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "Voice backend API key is invalid or expired"
	case http.StatusForbidden:
		return "Voice backend API key does not have access to this endpoint"
	case http.StatusNotFound:
		return "Voice backend endpoint not found, check the backend URL"
	case http.StatusTooManyRequests:
		return "Voice backend rate limit or quota exceeded, try again later"
	case http.StatusRequestEntityTooLarge:
		return "Voice backend rejected the audio as too large"
	default:
		return fmt.Sprintf("Voice backend returned status %d: %s", e.StatusCode, e.Body)
	}
}

func newAPIError(status int, body []byte) *APIError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &APIError{StatusCode: status, Body: string(body)}
}
