package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roychid/t3n28-football/internal/metrics"
	"github.com/roychid/t3n28-football/pkg/models"
)

// SessionSource reports the current local session state
type SessionSource interface {
	IsAuthenticated() bool
	Profile() *models.Profile
}

// FeatureChecker gates endpoints on tier capabilities
type FeatureChecker interface {
	IsFeatureAllowed(feature string) bool
}

// RequireSession rejects requests while no backend session is active.
// The dashboard holds a single local session; there is nothing to parse
// from the request itself.
func RequireSession(sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessions.IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests unless the logged-in profile is an admin
func RequireAdmin(sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := sessions.Profile()
		if profile == nil || !profile.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireFeature rejects requests when the current tier lacks the named
// capability. Denials are counted per feature.
func RequireFeature(policy FeatureChecker, feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.IsFeatureAllowed(feature) {
			metrics.FeatureDeniedTotal.WithLabelValues(feature).Inc()
			c.JSON(http.StatusForbidden, gin.H{
				"error": "This feature is not included in your tier",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
