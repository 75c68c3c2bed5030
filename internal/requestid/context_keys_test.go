package requestid

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "abc-123", Sanitize("abc-123"))

	for _, bad := range []string{"", "has space", "line\nbreak", strings.Repeat("x", 129)} {
		got := Sanitize(bad)
		_, err := uuid.Parse(got)
		assert.NoError(t, err, "expected a generated uuid for %q", bad)
	}
}

func TestSetAndRead(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)

	assert.Empty(t, FromGin(c))
	Set(c, "req-1")

	assert.Equal(t, "req-1", FromGin(c))
	assert.Equal(t, "req-1", FromContext(c.Request.Context()))
}

func TestFromContextMissing(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "x", FromContext(WithContext(context.Background(), "x")))
}
