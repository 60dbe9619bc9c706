package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/roychid/t3n28-football/pkg/models"
)

type mockSessions struct {
	authed  bool
	profile *models.Profile
}

func (m *mockSessions) IsAuthenticated() bool    { return m.authed }
func (m *mockSessions) Profile() *models.Profile { return m.profile }

type mockPolicy struct {
	allowed map[string]bool
}

func (m *mockPolicy) IsFeatureAllowed(feature string) bool { return m.allowed[feature] }

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sessions := &mockSessions{}
	router := gin.New()
	router.Use(RequireSession(sessions))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	sessions.authed = true
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sessions := &mockSessions{authed: true, profile: &models.Profile{}}
	router := gin.New()
	router.Use(RequireAdmin(sessions))
	router.GET("/admin", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	sessions.profile.IsAdmin = true
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Fail closed with no profile at all
	sessions.profile = nil
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireFeature(t *testing.T) {
	gin.SetMode(gin.TestMode)

	policy := &mockPolicy{allowed: map[string]bool{models.FeatureTelegram: true}}
	router := gin.New()
	router.POST("/broadcast", RequireFeature(policy, models.FeatureTelegram), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/analytics", RequireFeature(policy, models.FeatureAnalytics), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/broadcast", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/analytics", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(2, 2) // 2 requests per second, burst of 2

	router := gin.New()
	router.Use(RateLimit(rl))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// First two requests should succeed
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Third request should be rate limited
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
