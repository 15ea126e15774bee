package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role models.UserRole, secret string) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: "bob",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedRouter(fns ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(fns, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/protected", handlers...)
	return r
}

func TestJWTAcceptsValidToken(t *testing.T) {
	r := protectedRouter(JWT(testSecret))

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleScheduler, testSecret))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	r := protectedRouter(JWT(testSecret))

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q must be rejected", header)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	r := protectedRouter(JWT(testSecret))

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleScheduler, "other-secret"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesEnforcesRBAC(t *testing.T) {
	r := protectedRouter(JWT(testSecret), RequireRoles(models.RoleScheduler, models.RoleAdmin))

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleViewer, testSecret))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleAdmin, testSecret))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	r := protectedRouter(RequireRoles(models.RoleAdmin))

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
