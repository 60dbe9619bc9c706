package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roychid/t3n28-football/internal/config"
	"github.com/roychid/t3n28-football/internal/gateway"
	"github.com/roychid/t3n28-football/internal/logging"
	"github.com/roychid/t3n28-football/internal/quota"
	"github.com/roychid/t3n28-football/internal/session"
	"github.com/roychid/t3n28-football/pkg/models"
)

func testDashboard(t *testing.T, backendURL string) *Dashboard {
	t.Helper()
	log, err := logging.NewDefaultLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	sessions := session.New(nil, nil)
	tracker := quota.New(0, nil)
	gw := gateway.New(backendURL, 5*time.Second, sessions, tracker, log)
	return &Dashboard{
		log:      log,
		sessions: sessions,
		tracker:  tracker,
		gateway:  gw,
	}
}

func testRouterConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RateLimitRPS = 100
	cfg.Server.RateLimitBurst = 100
	return cfg
}

func TestAdminRoutesRejectWithoutSession(t *testing.T) {
	dash := testDashboard(t, "http://backend.invalid")
	router := setupRouter(dash, testRouterConfig(), dash.log)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRejectNonAdminProfile(t *testing.T) {
	dash := testDashboard(t, "http://backend.invalid")
	dash.sessions.SetSession(context.Background(), "token", &models.Profile{
		ID:    1,
		Email: "user@example.com",
		Tier:  models.TierPro,
	})
	router := setupRouter(dash, testRouterConfig(), dash.log)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin access required")
}

func TestAdminStatsPassesThroughForAdmin(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/stats", r.URL.Path)
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_users": 42, "pending_reqs": 3}`))
	}))
	defer backend.Close()

	dash := testDashboard(t, backend.URL)
	dash.sessions.SetSession(context.Background(), "admin-token", &models.Profile{
		ID:      1,
		Email:   "admin@example.com",
		IsAdmin: true,
	})
	router := setupRouter(dash, testRouterConfig(), dash.log)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_users": 42`)
}

func TestAdminRequestActionValidatesVerdict(t *testing.T) {
	dash := testDashboard(t, "http://backend.invalid")
	dash.sessions.SetSession(context.Background(), "admin-token", &models.Profile{
		ID:      1,
		IsAdmin: true,
	})
	router := setupRouter(dash, testRouterConfig(), dash.log)

	w := httptest.NewRecorder()
	body := `{"request_id": 7, "action": "escalate"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/requests/action",
		strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
