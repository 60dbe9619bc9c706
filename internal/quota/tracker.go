package quota

import (
	"sync"

	"github.com/roychid/t3n28-football/pkg/models"
)

// DefaultWarnRatio is the usage fraction at which the warning state begins
const DefaultWarnRatio = 0.8

// Notifier receives quota state-change events. Rendering them is the UI
// layer's concern.
type Notifier interface {
	QuotaWarning(usage models.UsageSnapshot, over bool)
}

type state int

const (
	stateOK state = iota
	stateWarn
	stateOver
)

// Tracker classifies the subscriber's server-reported usage window.
// It holds no counting logic of its own: quota truth lives server-side,
// and each snapshot fully replaces the last (last write wins).
type Tracker struct {
	mu        sync.Mutex
	last      *models.UsageSnapshot
	state     state
	warnRatio float64
	notifier  Notifier
}

// New creates a tracker. notifier may be nil; warnRatio <= 0 uses the default.
func New(warnRatio float64, notifier Notifier) *Tracker {
	if warnRatio <= 0 {
		warnRatio = DefaultWarnRatio
	}
	return &Tracker{warnRatio: warnRatio, notifier: notifier}
}

// Update replaces the last-known usage and emits a notifier event when
// the window transitions into the warn or over state.
func (t *Tracker) Update(usage models.UsageSnapshot) {
	next := t.classify(usage)

	t.mu.Lock()
	prev := t.state
	t.last = &usage
	t.state = next
	t.mu.Unlock()

	if t.notifier != nil && next != prev && next != stateOK {
		t.notifier.QuotaWarning(usage, next == stateOver)
	}
}

// ShouldWarn reports whether the snapshot is near the limit but not yet
// over: warnRatio <= count/limit < 1.
func (t *Tracker) ShouldWarn(usage models.UsageSnapshot) bool {
	if usage.Limit <= 0 {
		// No server-reported window yet
		return false
	}
	return usage.Ratio() >= t.warnRatio && usage.Count < usage.Limit
}

// IsOver reports whether the snapshot has exhausted the window
func (t *Tracker) IsOver(usage models.UsageSnapshot) bool {
	if usage.Limit <= 0 {
		return false
	}
	return usage.Count >= usage.Limit
}

// Last returns the most recent snapshot, or nil before the first update
func (t *Tracker) Last() *models.UsageSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return nil
	}
	copied := *t.last
	return &copied
}

func (t *Tracker) classify(usage models.UsageSnapshot) state {
	switch {
	case t.IsOver(usage):
		return stateOver
	case t.ShouldWarn(usage):
		return stateWarn
	default:
		return stateOK
	}
}
