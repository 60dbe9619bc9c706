package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roychid/t3n28-football/internal/gateway"
	"github.com/roychid/t3n28-football/internal/logging"
	"github.com/roychid/t3n28-football/pkg/models"
)

// Backend is the slice of the gateway the poller refreshes through
type Backend interface {
	Usage(ctx context.Context) (*models.UsageSnapshot, error)
	Notifications(ctx context.Context) ([]models.Notification, error)
}

// SessionSource reports whether a session is active. The poller stays
// idle while logged out; an expired session stops the cycle until the
// next login.
type SessionSource interface {
	IsAuthenticated() bool
}

// Poller refreshes the usage window and notifications in the background
// so the dashboard's quota state stays current between page loads.
type Poller struct {
	backend               Backend
	sessions              SessionSource
	log                   *logging.Logger
	usageInterval         time.Duration
	notificationsInterval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// New creates a poller. Non-positive intervals fall back to one minute
// for usage and two minutes for notifications.
func New(backend Backend, sessions SessionSource, usageInterval, notificationsInterval time.Duration, log *logging.Logger) *Poller {
	if usageInterval <= 0 {
		usageInterval = time.Minute
	}
	if notificationsInterval <= 0 {
		notificationsInterval = 2 * time.Minute
	}
	return &Poller{
		backend:               backend,
		sessions:              sessions,
		log:                   log,
		usageInterval:         usageInterval,
		notificationsInterval: notificationsInterval,
	}
}

// Start begins the refresh loop. Calling Start on a running poller is a
// no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true

	go p.loop(ctx)
	p.log.Info("Background refresh started")
}

// Stop stops the refresh loop
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}

	p.cancel()
	p.running = false
	p.log.Info("Background refresh stopped")
}

func (p *Poller) loop(ctx context.Context) {
	usageTicker := time.NewTicker(p.usageInterval)
	defer usageTicker.Stop()
	notifTicker := time.NewTicker(p.notificationsInterval)
	defer notifTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-usageTicker.C:
			p.refreshUsage(ctx)
		case <-notifTicker.C:
			p.refreshNotifications(ctx)
		}
	}
}

func (p *Poller) refreshUsage(ctx context.Context) {
	if !p.sessions.IsAuthenticated() {
		return
	}

	// The gateway feeds the quota tracker as a side effect of Usage
	if _, err := p.backend.Usage(ctx); err != nil {
		if errors.Is(err, gateway.ErrSessionExpired) {
			return
		}
		p.log.ErrorWithErr("Background usage refresh failed", err)
	}
}

func (p *Poller) refreshNotifications(ctx context.Context) {
	if !p.sessions.IsAuthenticated() {
		return
	}

	notifs, err := p.backend.Notifications(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrSessionExpired) {
			return
		}
		p.log.ErrorWithErr("Background notification refresh failed", err)
		return
	}

	if unread := models.UnreadCount(notifs); unread > 0 {
		p.log.Infof("%d unread notification(s)", unread)
	}
}
