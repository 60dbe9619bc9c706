package broadcast

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/roychid/t3n28-football/internal/logging"
	"github.com/roychid/t3n28-football/internal/metrics"
	"github.com/roychid/t3n28-football/internal/tracing"
	"github.com/roychid/t3n28-football/pkg/models"
)

// ErrFeatureNotAllowed is returned when the current tier has no telegram
// delivery capability. Nothing is sent when this is returned.
var ErrFeatureNotAllowed = errors.New("telegram delivery is not included in your tier")

// TierPolicy is the slice of the tier policy the dispatcher consults
type TierPolicy interface {
	IsFeatureAllowed(feature string) bool
	ChannelLimit() int
	AffiliateMode() models.AffiliateMode
	WatermarkEnabled() bool
	OwnerAffiliateLink(fallback string) string
}

// Sender delivers one message to one telegram chat
type Sender interface {
	SendMessage(ctx context.Context, botToken, chatID, text string) error
}

// Recorder persists finished broadcast batches for the history view
type Recorder interface {
	RecordBroadcast(ctx context.Context, rec *models.BroadcastRecord) error
}

// Dispatcher fans one message out to the configured channels, honoring
// the tier channel limit and decorating the text per the tier's
// affiliate and watermark settings.
type Dispatcher struct {
	policy    TierPolicy
	sender    Sender
	recorder  Recorder
	log       *logging.Logger
	ownerLink string
	watermark string
}

// Option configures optional dispatcher collaborators
type Option func(*Dispatcher)

// WithRecorder wires the broadcast history store. Recording is
// best-effort; a failed write never fails the broadcast.
func WithRecorder(recorder Recorder) Option {
	return func(d *Dispatcher) { d.recorder = recorder }
}

// New creates a dispatcher. ownerLink is the fallback affiliate link for
// owner-mode tiers and watermark is the footer line appended for
// watermark-enabled tiers.
func New(policy TierPolicy, sender Sender, ownerLink, watermark string, log *logging.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		policy:    policy,
		sender:    sender,
		log:       log,
		ownerLink: ownerLink,
		watermark: watermark,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send delivers text to every eligible channel, in configuration order,
// one at a time. Each channel gets its own outcome entry; one failure
// never stops the remaining channels. The returned slice has exactly one
// entry per attempted channel.
func (d *Dispatcher) Send(ctx context.Context, channels []models.Channel, text string) ([]models.Delivery, error) {
	span, ctx := tracing.StartSpan(ctx, "broadcast.send")
	defer tracing.FinishSpan(span)

	if !d.policy.IsFeatureAllowed(models.FeatureTelegram) {
		metrics.FeatureDeniedTotal.WithLabelValues(models.FeatureTelegram).Inc()
		tracing.LogError(span, ErrFeatureNotAllowed)
		return nil, ErrFeatureNotAllowed
	}

	targets := d.eligible(channels)
	tracing.SetTag(span, "channels", len(targets))
	if len(targets) == 0 {
		d.log.Warn("Broadcast requested with no eligible channels")
		return []models.Delivery{}, nil
	}

	message := d.compose(text)
	batchID := uuid.New().String()
	log := d.log.WithField("batch_id", batchID)
	log.Infof("Broadcasting to %d channel(s)", len(targets))

	deliveries := make([]models.Delivery, 0, len(targets))
	for _, ch := range targets {
		err := d.sender.SendMessage(ctx, ch.Token, ch.ChatID, message)
		outcome := models.Delivery{Channel: ch.Name, OK: err == nil}
		status := "ok"
		if err != nil {
			outcome.Error = err.Error()
			status = "error"
		}
		metrics.BroadcastDeliveriesTotal.WithLabelValues(status).Inc()
		d.log.LogDelivery(batchID, ch.Name, err == nil, err)
		deliveries = append(deliveries, outcome)
	}
	metrics.BroadcastsTotal.Inc()

	if d.recorder != nil {
		rec := &models.BroadcastRecord{
			ID:         batchID,
			Text:       text,
			Deliveries: deliveries,
			CreatedAt:  time.Now().UTC(),
		}
		if err := d.recorder.RecordBroadcast(ctx, rec); err != nil {
			log.ErrorWithErr("Failed to record broadcast batch", err)
		}
	}

	return deliveries, nil
}

// eligible filters out non-deliverable channels, then truncates to the
// tier channel limit keeping configuration order.
func (d *Dispatcher) eligible(channels []models.Channel) []models.Channel {
	targets := make([]models.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.Deliverable() {
			targets = append(targets, ch)
		}
	}

	limit := d.policy.ChannelLimit()
	if limit < len(targets) {
		skipped := len(targets) - limit
		metrics.BroadcastChannelsSkipped.Add(float64(skipped))
		d.log.Warnf("Channel limit %d reached, skipping %d channel(s)", limit, skipped)
		if limit < 0 {
			limit = 0
		}
		targets = targets[:limit]
	}
	return targets
}

// compose decorates the outgoing text: affiliate link first, then the
// watermark footer. Only the owner affiliate mode adorns; any other mode
// leaves the text alone, and with the watermark off too the text goes
// out byte for byte as written.
func (d *Dispatcher) compose(text string) string {
	if d.policy.AffiliateMode() == models.AffiliateOwner {
		if link := d.policy.OwnerAffiliateLink(d.ownerLink); link != "" {
			text += "\n\n" + link
		}
	}

	if d.policy.WatermarkEnabled() && d.watermark != "" {
		text += "\n\n" + d.watermark
	}
	return text
}
