// Package requestid carries the per-request correlation ID through gin and
// context.Context so logs and backend calls can be matched up.
package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKey is a typed key for context values.
type ContextKey string

// CtxKeyRequestID is the context key for the request ID.
const CtxKeyRequestID ContextKey = "request_id"

// Header is the HTTP header the ID is read from and forwarded in.
const Header = "X-Request-ID"

// maxLength bounds IDs accepted from clients.
const maxLength = 128

// New generates a fresh request ID.
func New() string {
	return uuid.NewString()
}

// Sanitize returns id if it is safe to echo and log, otherwise a new ID.
func Sanitize(id string) string {
	if id == "" || len(id) > maxLength {
		return New()
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return New()
		}
	}
	return id
}

// Set stores the request ID on the gin context and on the request's context.
func Set(c *gin.Context, id string) {
	c.Set(string(CtxKeyRequestID), id)
	c.Request = c.Request.WithContext(WithContext(c.Request.Context(), id))
}

// FromGin retrieves the request ID from a gin context.
func FromGin(c *gin.Context) string {
	val, exists := c.Get(string(CtxKeyRequestID))
	if !exists {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WithContext returns a copy of ctx carrying id.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeyRequestID, id)
}

// FromContext retrieves the request ID from ctx, or "" when absent.
func FromContext(ctx context.Context) string {
	if s, ok := ctx.Value(CtxKeyRequestID).(string); ok {
		return s
	}
	return ""
}
