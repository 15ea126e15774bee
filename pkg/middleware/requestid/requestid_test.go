package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) {
		*captured = Value(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestMiddlewareGeneratesID(t *testing.T) {
	var seen string
	r := testRouter(&seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	echoed := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, seen)
	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestMiddlewareKeepsCallerID(t *testing.T) {
	var seen string
	r := testRouter(&seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "proxy-abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "proxy-abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "proxy-abc-123", seen)
}
