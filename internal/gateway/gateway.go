package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/roychid/t3n28-football/internal/logging"
	"github.com/roychid/t3n28-football/internal/metrics"
	"github.com/roychid/t3n28-football/internal/tracing"
	"github.com/roychid/t3n28-football/pkg/models"
)

// Sessions is the slice of the session store the gateway needs
type Sessions interface {
	Token() string
	SetSession(ctx context.Context, token string, profile *models.Profile)
	Clear(ctx context.Context)
}

// QuotaSink receives every server-reported usage snapshot
type QuotaSink interface {
	Update(usage models.UsageSnapshot)
}

// Navigator receives the login-redirect intent raised on session expiry.
// The gateway never touches the environment itself; the UI layer decides
// what a redirect means.
type Navigator interface {
	OnEntryPage() bool
	RedirectToLogin()
}

// PayloadCache stores the last-seen football payloads and usage snapshot
// so the dashboard can degrade to cached data when the window is exhausted.
type PayloadCache interface {
	SaveFootballPayload(ctx context.Context, endpoint string, data json.RawMessage, ttl time.Duration) error
	FootballPayload(ctx context.Context, endpoint string) (json.RawMessage, error)
	SaveUsage(ctx context.Context, usage *models.UsageSnapshot) error
}

// Gateway wraps all outbound calls to the t3n28-football backend. It
// injects the credential, interprets quota metadata on every football
// response, and handles session expiry uniformly.
type Gateway struct {
	baseURL    string
	client     *http.Client
	sessions   Sessions
	quota      QuotaSink
	cache      PayloadCache
	nav        Navigator
	log        *logging.Logger
	payloadTTL time.Duration
}

// Option configures optional gateway collaborators
type Option func(*Gateway)

// WithNavigator wires the login-redirect sink
func WithNavigator(nav Navigator) Option {
	return func(g *Gateway) { g.nav = nav }
}

// WithPayloadCache wires the cached-data fallback store
func WithPayloadCache(cache PayloadCache, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.cache = cache
		if ttl > 0 {
			g.payloadTTL = ttl
		}
	}
}

// New creates a gateway against the given backend base URL
func New(baseURL string, timeout time.Duration, sessions Sessions, quota QuotaSink, log *logging.Logger, opts ...Option) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	g := &Gateway{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		sessions:   sessions,
		quota:      quota,
		log:        log,
		payloadTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Request performs one backend call and returns the raw JSON body.
// A 401 clears the session, raises the login redirect intent and returns
// ErrSessionExpired; any other non-2xx becomes a RequestError.
func (g *Gateway) Request(ctx context.Context, method, path string, body any, requiresAuth bool) (json.RawMessage, error) {
	span, ctx := tracing.StartSpan(ctx, "backend.request")
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "http.method", method)
	tracing.SetTag(span, "http.path", path)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if requiresAuth {
		if token := g.sessions.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	// Query strings carry per-request values, so labels use the bare path
	// to keep the metric cardinality bounded.
	route := metricPath(path)

	start := time.Now()
	resp, err := g.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordBackendRequest(method, route, "error", duration.Seconds())
		g.log.LogBackendRequest(method, route, 0, duration, err)
		tracing.LogError(span, err)
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	metrics.RecordBackendRequest(method, route, strconv.Itoa(resp.StatusCode), duration.Seconds())
	g.log.LogBackendRequest(method, route, resp.StatusCode, duration, nil)
	tracing.SetTag(span, "http.status_code", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		g.sessions.Clear(ctx)
		metrics.SessionExpiriesTotal.Inc()
		if g.nav != nil && !g.nav.OnEntryPage() {
			g.nav.RedirectToLogin()
		}
		return nil, ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			Status: resp.StatusCode,
			Detail: errorDetail(data, resp.StatusCode),
		}
	}

	return json.RawMessage(data), nil
}

// metricPath strips the query string from a request path
func metricPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// errorDetail extracts the backend's detail field, else a generic message
func errorDetail(body []byte, status int) string {
	var errBody struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Detail != "" {
		return errBody.Detail
	}
	return genericDetail(status)
}

func (g *Gateway) get(ctx context.Context, path string, out any) error {
	raw, err := g.Request(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (g *Gateway) post(ctx context.Context, path string, body, out any, requiresAuth bool) error {
	raw, err := g.Request(ctx, http.MethodPost, path, body, requiresAuth)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// Auth operations

// Register creates an account and saves the returned session
func (g *Gateway) Register(ctx context.Context, reg models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := g.post(ctx, "/auth/register", reg, &resp, false); err != nil {
		return nil, err
	}
	g.sessions.SetSession(ctx, resp.Token, &resp.Profile)
	return &resp, nil
}

// Login authenticates and saves the returned session
func (g *Gateway) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	body := models.LoginRequest{Email: email, Password: password}
	if err := g.post(ctx, "/auth/login", body, &resp, false); err != nil {
		return nil, err
	}
	g.sessions.SetSession(ctx, resp.Token, &resp.Profile)
	return &resp, nil
}

// Logout clears the session and raises the login redirect intent
func (g *Gateway) Logout(ctx context.Context) {
	g.sessions.Clear(ctx)
	if g.nav != nil {
		g.nav.RedirectToLogin()
	}
}

// RefreshMe reloads the profile from the backend and replaces the stored
// one, keeping the existing credential.
func (g *Gateway) RefreshMe(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := g.get(ctx, "/auth/me", &profile); err != nil {
		return nil, err
	}
	g.sessions.SetSession(ctx, g.sessions.Token(), &profile)
	return &profile, nil
}

// Football proxy

// FootballGet fetches a proxied football endpoint. The quota metadata on
// the envelope feeds the tracker and the payload is cached for over-limit
// fallback; only the data portion reaches the caller.
func (g *Gateway) FootballGet(ctx context.Context, endpoint string) (json.RawMessage, error) {
	raw, err := g.Request(ctx, http.MethodGet, "/football"+endpoint, nil, true)
	if err != nil {
		return nil, err
	}

	var envelope models.FootballEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode football envelope: %w", err)
	}

	g.quota.Update(envelope.Usage)
	metrics.RecordQuota(envelope.Usage.Count, envelope.Usage.Limit)
	if envelope.Warn || envelope.OverLimit {
		g.log.LogQuota(envelope.Usage.Count, envelope.Usage.Limit, envelope.Warn, envelope.OverLimit)
	}

	if g.cache != nil {
		if err := g.cache.SaveUsage(ctx, &envelope.Usage); err != nil {
			g.log.ErrorWithErr("Failed to cache usage snapshot", err)
		}
		if len(envelope.Data) > 0 {
			if err := g.cache.SaveFootballPayload(ctx, endpoint, envelope.Data, g.payloadTTL); err != nil {
				g.log.ErrorWithErr("Failed to cache football payload", err)
			}
		}
	}

	return envelope.Data, nil
}

// CachedFootball returns the last cached payload for an endpoint, or nil.
// Used to degrade gracefully when the quota window is exhausted.
func (g *Gateway) CachedFootball(ctx context.Context, endpoint string) (json.RawMessage, error) {
	if g.cache == nil {
		return nil, nil
	}
	return g.cache.FootballPayload(ctx, endpoint)
}

// Usage and notifications

// Usage fetches the current quota window
func (g *Gateway) Usage(ctx context.Context) (*models.UsageSnapshot, error) {
	var usage models.UsageSnapshot
	if err := g.get(ctx, "/usage/me", &usage); err != nil {
		return nil, err
	}
	g.quota.Update(usage)
	metrics.RecordQuota(usage.Count, usage.Limit)
	return &usage, nil
}

// Notifications fetches the subscriber's recent notifications
func (g *Gateway) Notifications(ctx context.Context) ([]models.Notification, error) {
	var notifs []models.Notification
	if err := g.get(ctx, "/notifications", &notifs); err != nil {
		return nil, err
	}
	return notifs, nil
}

// MarkNotificationRead marks one notification as read
func (g *Gateway) MarkNotificationRead(ctx context.Context, id int64) error {
	return g.post(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil, true)
}

// MarkAllNotificationsRead marks every notification as read
func (g *Gateway) MarkAllNotificationsRead(ctx context.Context) error {
	return g.post(ctx, "/notifications/read-all", nil, nil, true)
}

// Subscriptions

// RequestUpgrade submits a tier upgrade request for admin review
func (g *Gateway) RequestUpgrade(ctx context.Context, tier models.Tier, whatsapp string) error {
	body := models.UpgradeRequest{Tier: tier, Whatsapp: whatsapp}
	return g.post(ctx, "/subscriptions/request", body, nil, true)
}

// MySubscriptionRequest fetches the latest upgrade request, if any
func (g *Gateway) MySubscriptionRequest(ctx context.Context) (*models.SubscriptionRequest, error) {
	var req models.SubscriptionRequest
	if err := g.get(ctx, "/subscriptions/mine", &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Admin console. These pass through to the backend's admin endpoints;
// the backend enforces admin rights on its side too.

// AdminStats fetches the admin overview counters
func (g *Gateway) AdminStats(ctx context.Context) (json.RawMessage, error) {
	return g.Request(ctx, http.MethodGet, "/admin/stats", nil, true)
}

// AdminUsers fetches the full subscriber list
func (g *Gateway) AdminUsers(ctx context.Context) (json.RawMessage, error) {
	return g.Request(ctx, http.MethodGet, "/admin/users", nil, true)
}

// AdminRequests fetches upgrade requests filtered by status
func (g *Gateway) AdminRequests(ctx context.Context, status string) ([]models.SubscriptionRequest, error) {
	if status == "" {
		status = "pending"
	}
	var reqs []models.SubscriptionRequest
	if err := g.get(ctx, "/admin/requests?status="+url.QueryEscape(status), &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// AdminRequestAction approves or rejects an upgrade request
func (g *Gateway) AdminRequestAction(ctx context.Context, action models.SubscriptionAction) error {
	return g.post(ctx, "/admin/requests/action", action, nil, true)
}
