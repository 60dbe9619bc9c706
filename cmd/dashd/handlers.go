package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roychid/t3n28-football/internal/broadcast"
	"github.com/roychid/t3n28-football/internal/cache"
	"github.com/roychid/t3n28-football/internal/database"
	"github.com/roychid/t3n28-football/internal/gateway"
	"github.com/roychid/t3n28-football/internal/logging"
	"github.com/roychid/t3n28-football/internal/quota"
	"github.com/roychid/t3n28-football/internal/session"
	"github.com/roychid/t3n28-football/internal/tier"
	"github.com/roychid/t3n28-football/pkg/models"
)

// Dashboard holds the wired core components behind the local API
type Dashboard struct {
	log        *logging.Logger
	sessions   *session.Store
	policy     *tier.Policy
	tracker    *quota.Tracker
	gateway    *gateway.Gateway
	repo       *database.Repository
	db         *database.DB
	kv         *cache.Store
	dispatcher *broadcast.Dispatcher
}

// backendError maps gateway errors onto local API responses. Backend
// error details pass through with their original status.
func (dash *Dashboard) backendError(c *gin.Context, err error) {
	if errors.Is(err, gateway.ErrSessionExpired) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if reqErr, ok := gateway.IsRequestError(err); ok {
		c.JSON(reqErr.Status, gin.H{"error": reqErr.Detail})
		return
	}
	dash.log.ErrorWithErr("Backend request failed", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "Backend unavailable"})
}

// Auth

func (dash *Dashboard) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	resp, err := dash.gateway.Register(c.Request.Context(), req)
	if err != nil {
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (dash *Dashboard) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := dash.gateway.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		dash.backendError(c, err)
		return
	}

	dash.log.WithUser(resp.Email).WithTier(string(resp.Tier)).Info("Logged in")
	c.JSON(http.StatusOK, resp)
}

func (dash *Dashboard) logout(c *gin.Context) {
	dash.gateway.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (dash *Dashboard) me(c *gin.Context) {
	profile, err := dash.gateway.RefreshMe(c.Request.Context())
	if err != nil {
		dash.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (dash *Dashboard) sessionStatus(c *gin.Context) {
	if !dash.sessions.IsAuthenticated() {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"profile":       dash.sessions.Profile(),
		"tier_label":    dash.policy.Label(),
	})
}

func (dash *Dashboard) tierSummary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"label":         dash.policy.Label(),
		"channel_limit": dash.policy.ChannelLimit(),
		"affiliate":     dash.policy.AffiliateMode(),
		"watermark":     dash.policy.WatermarkEnabled(),
		"features": gin.H{
			models.FeatureTelegram:     dash.policy.IsFeatureAllowed(models.FeatureTelegram),
			models.FeatureSchedule:     dash.policy.IsFeatureAllowed(models.FeatureSchedule),
			models.FeatureFootballNews: dash.policy.IsFeatureAllowed(models.FeatureFootballNews),
			models.FeatureGoalVideos:   dash.policy.IsFeatureAllowed(models.FeatureGoalVideos),
			models.FeatureHighlights:   dash.policy.IsFeatureAllowed(models.FeatureHighlights),
		},
	})
}

// Football proxy

func (dash *Dashboard) football(c *gin.Context) {
	endpoint := c.Param("endpoint")
	if q := c.Request.URL.RawQuery; q != "" {
		endpoint += "?" + q
	}

	// League-scoped requests are gated locally before spending quota
	if leagueStr := c.Query("league"); leagueStr != "" {
		leagueID, err := strconv.Atoi(leagueStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid league id"})
			return
		}
		if !dash.policy.CanUseLeague(leagueID) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "This league is not included in your tier",
			})
			return
		}
	}

	data, err := dash.gateway.FootballGet(c.Request.Context(), endpoint)
	if err != nil {
		// Serve the last cached payload when the quota window is exhausted
		if reqErr, ok := gateway.IsRequestError(err); ok && reqErr.Status == http.StatusTooManyRequests {
			cached, cacheErr := dash.gateway.CachedFootball(c.Request.Context(), endpoint)
			if cacheErr == nil && len(cached) > 0 {
				c.JSON(http.StatusOK, gin.H{"data": cached, "cached": true})
				return
			}
		}
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (dash *Dashboard) usage(c *gin.Context) {
	usage, err := dash.gateway.Usage(c.Request.Context())
	if err != nil {
		// Degrade to the last-known snapshot rather than a blank widget
		if last := dash.tracker.Last(); last != nil {
			c.JSON(http.StatusOK, gin.H{"usage": last, "stale": true})
			return
		}
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"usage": usage,
		"warn":  dash.tracker.ShouldWarn(*usage),
		"over":  dash.tracker.IsOver(*usage),
	})
}

// Notifications

func (dash *Dashboard) listNotifications(c *gin.Context) {
	notifs, err := dash.gateway.Notifications(c.Request.Context())
	if err != nil {
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifs,
		"unread":        models.UnreadCount(notifs),
	})
}

func (dash *Dashboard) markNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	if err := dash.gateway.MarkNotificationRead(c.Request.Context(), id); err != nil {
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (dash *Dashboard) markAllNotificationsRead(c *gin.Context) {
	if err := dash.gateway.MarkAllNotificationsRead(c.Request.Context()); err != nil {
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Delivery channels

func (dash *Dashboard) listChannels(c *gin.Context) {
	channels, err := dash.repo.ListChannels(c.Request.Context())
	if err != nil {
		dash.log.ErrorWithErr("Failed to list channels", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list channels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channels":      channels,
		"channel_limit": dash.policy.ChannelLimit(),
	})
}

func (dash *Dashboard) createChannel(c *gin.Context) {
	var channel models.Channel
	if err := c.ShouldBindJSON(&channel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if channel.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Channel name is required"})
		return
	}

	if err := dash.repo.CreateChannel(c.Request.Context(), &channel); err != nil {
		dash.log.ErrorWithErr("Failed to create channel", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel"})
		return
	}

	c.JSON(http.StatusCreated, channel)
}

func (dash *Dashboard) updateChannel(c *gin.Context) {
	var channel models.Channel
	if err := c.ShouldBindJSON(&channel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	channel.ID = c.Param("id")

	err := dash.repo.UpdateChannel(c.Request.Context(), &channel)
	if errors.Is(err, database.ErrChannelNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}
	if err != nil {
		dash.log.ErrorWithErr("Failed to update channel", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update channel"})
		return
	}

	c.JSON(http.StatusOK, channel)
}

func (dash *Dashboard) deleteChannel(c *gin.Context) {
	err := dash.repo.DeleteChannel(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrChannelNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}
	if err != nil {
		dash.log.ErrorWithErr("Failed to delete channel", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete channel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Channel deleted"})
}

// Broadcasts

func (dash *Dashboard) sendBroadcast(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Broadcast text is required"})
		return
	}

	channels, err := dash.repo.ListChannels(c.Request.Context())
	if err != nil {
		dash.log.ErrorWithErr("Failed to list channels", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list channels"})
		return
	}

	deliveries, err := dash.dispatcher.Send(c.Request.Context(), channels, req.Text)
	if errors.Is(err, broadcast.ErrFeatureNotAllowed) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		dash.log.ErrorWithErr("Broadcast failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Broadcast failed"})
		return
	}

	sent := 0
	for _, d := range deliveries {
		if d.OK {
			sent++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"deliveries": deliveries,
		"sent":       sent,
		"failed":     len(deliveries) - sent,
	})
}

func (dash *Dashboard) listBroadcasts(c *gin.Context) {
	limit := 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	records, err := dash.repo.ListBroadcasts(c.Request.Context(), limit)
	if err != nil {
		dash.log.ErrorWithErr("Failed to list broadcasts", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list broadcasts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"broadcasts": records})
}

// Settings

func (dash *Dashboard) getSettings(c *gin.Context) {
	settings, err := dash.kv.Settings(c.Request.Context())
	if err != nil {
		dash.log.ErrorWithErr("Failed to load settings", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (dash *Dashboard) updateSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := dash.kv.SaveSettings(c.Request.Context(), &settings); err != nil {
		dash.log.ErrorWithErr("Failed to save settings", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// Subscription upgrades

func (dash *Dashboard) requestUpgrade(c *gin.Context) {
	var req models.UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Tier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tier is required"})
		return
	}

	if err := dash.gateway.RequestUpgrade(c.Request.Context(), req.Tier, req.Whatsapp); err != nil {
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Upgrade request submitted"})
}

func (dash *Dashboard) mySubscriptionRequest(c *gin.Context) {
	req, err := dash.gateway.MySubscriptionRequest(c.Request.Context())
	if err != nil {
		if reqErr, ok := gateway.IsRequestError(err); ok && reqErr.Status == http.StatusNotFound {
			c.JSON(http.StatusOK, gin.H{"request": nil})
			return
		}
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": req})
}

func (dash *Dashboard) adminStats(c *gin.Context) {
	stats, err := dash.gateway.AdminStats(c.Request.Context())
	if err != nil {
		dash.backendError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", stats)
}

func (dash *Dashboard) adminUsers(c *gin.Context) {
	users, err := dash.gateway.AdminUsers(c.Request.Context())
	if err != nil {
		dash.backendError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", users)
}

func (dash *Dashboard) adminRequests(c *gin.Context) {
	reqs, err := dash.gateway.AdminRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

func (dash *Dashboard) adminRequestAction(c *gin.Context) {
	var action models.SubscriptionAction
	if err := c.ShouldBindJSON(&action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if action.Action != "approve" && action.Action != "reject" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be approve or reject"})
		return
	}

	if err := dash.gateway.AdminRequestAction(c.Request.Context(), action); err != nil {
		dash.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request resolved", "action": action.Action})
}
