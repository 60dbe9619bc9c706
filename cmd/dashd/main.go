package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roychid/t3n28-football/internal/broadcast"
	"github.com/roychid/t3n28-football/internal/cache"
	"github.com/roychid/t3n28-football/internal/config"
	"github.com/roychid/t3n28-football/internal/database"
	"github.com/roychid/t3n28-football/internal/gateway"
	"github.com/roychid/t3n28-football/internal/logging"
	"github.com/roychid/t3n28-football/internal/metrics"
	"github.com/roychid/t3n28-football/internal/middleware"
	"github.com/roychid/t3n28-football/internal/poller"
	"github.com/roychid/t3n28-football/internal/quota"
	"github.com/roychid/t3n28-football/internal/session"
	"github.com/roychid/t3n28-football/internal/tier"
	"github.com/roychid/t3n28-football/internal/tracing"
	"github.com/roychid/t3n28-football/pkg/models"
	"github.com/roychid/t3n28-football/pkg/telegram"
)

// quotaLogger turns quota state transitions into log lines and metrics
type quotaLogger struct {
	log *logging.Logger
}

func (n *quotaLogger) QuotaWarning(usage models.UsageSnapshot, over bool) {
	state := "warn"
	if over {
		state = "over"
	}
	metrics.QuotaWarningsTotal.WithLabelValues(state).Inc()
	n.log.LogQuota(usage.Count, usage.Limit, !over, over)
}

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Initialize tracing
	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			log.ErrorWithErr("Failed to initialize tracer, continuing without tracing", err)
		} else {
			defer closer.Close()
		}
	}

	// Initialize local key-value storage
	kv, err := cache.New(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer kv.Close()

	// Initialize channel and history storage
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	repo := database.NewRepository(db)

	// Session state, restored from the previous run when present
	sessions := session.New(kv, log)
	if err := sessions.Restore(context.Background()); err != nil {
		log.ErrorWithErr("Failed to restore saved session", err)
	}
	if sessions.IsAuthenticated() {
		log.WithUser(sessions.Profile().Email).Info("Restored saved session")
	}

	policy := tier.New(sessions)
	tracker := quota.New(cfg.Quota.WarnRatio, &quotaLogger{log: log})

	gw := gateway.New(
		cfg.Backend.BaseURL,
		cfg.Backend.Timeout,
		sessions,
		tracker,
		log,
		gateway.WithPayloadCache(kv, 0),
	)

	sender := telegram.NewClient(cfg.Telegram.APIBase, cfg.Telegram.ParseMode, cfg.Telegram.Timeout)
	dispatcher := broadcast.New(
		policy,
		sender,
		cfg.Broadcast.OwnerAffiliateLink,
		cfg.Broadcast.WatermarkText,
		log,
		broadcast.WithRecorder(repo),
	)

	dash := &Dashboard{
		log:        log,
		sessions:   sessions,
		policy:     policy,
		tracker:    tracker,
		gateway:    gw,
		repo:       repo,
		db:         db,
		kv:         kv,
		dispatcher: dispatcher,
	}

	// Background refresh of usage and notifications
	if cfg.Poller.Enabled {
		refresher := poller.New(gw, sessions, cfg.Poller.UsageInterval, cfg.Poller.NotificationsInterval, log)
		refresher.Start()
		defer refresher.Stop()
	}

	// Start metrics server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				log.ErrorWithErr("Metrics server stopped", err)
			}
		}()
	}

	// Setup router
	router := setupRouter(dash, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting dashboard API on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}

func setupRouter(dash *Dashboard, cfg *config.Config, log *logging.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log))

	rl := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	router.Use(middleware.RateLimit(rl))

	// Health check
	router.GET("/health", dash.healthCheck)

	v1 := router.Group("/api/v1")
	{
		// Auth
		v1.POST("/auth/register", dash.register)
		v1.POST("/auth/login", dash.login)
		v1.GET("/session", dash.sessionStatus)

		authed := v1.Group("")
		authed.Use(middleware.RequireSession(dash.sessions))
		{
			authed.POST("/auth/logout", dash.logout)
			authed.GET("/auth/me", dash.me)
			authed.GET("/tier", dash.tierSummary)

			// Football data proxy
			authed.GET("/football/*endpoint", dash.football)
			authed.GET("/usage", dash.usage)

			// Notifications
			authed.GET("/notifications", dash.listNotifications)
			authed.POST("/notifications/:id/read", dash.markNotificationRead)
			authed.POST("/notifications/read-all", dash.markAllNotificationsRead)

			// Delivery channels
			authed.GET("/channels", dash.listChannels)
			authed.POST("/channels", dash.createChannel)
			authed.PUT("/channels/:id", dash.updateChannel)
			authed.DELETE("/channels/:id", dash.deleteChannel)

			// Broadcasts
			authed.POST("/broadcast",
				middleware.RequireFeature(dash.policy, models.FeatureTelegram),
				dash.sendBroadcast)
			authed.GET("/broadcasts", dash.listBroadcasts)

			// Settings
			authed.GET("/settings", dash.getSettings)
			authed.PUT("/settings", dash.updateSettings)

			// Subscription upgrades
			authed.POST("/subscriptions/request", dash.requestUpgrade)
			authed.GET("/subscriptions/mine", dash.mySubscriptionRequest)

			// Admin console proxy
			admin := authed.Group("/admin")
			admin.Use(middleware.RequireAdmin(dash.sessions))
			{
				admin.GET("/stats", dash.adminStats)
				admin.GET("/users", dash.adminUsers)
				admin.GET("/requests", dash.adminRequests)
				admin.POST("/requests/action", dash.adminRequestAction)
			}
		}
	}

	return router
}

// Health check endpoint
func (dash *Dashboard) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := dash.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	if err := dash.kv.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
