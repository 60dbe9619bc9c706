package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roychid/t3n28-football/pkg/models"
)

type recordingNotifier struct {
	events []models.UsageSnapshot
	overs  []bool
}

func (r *recordingNotifier) QuotaWarning(usage models.UsageSnapshot, over bool) {
	r.events = append(r.events, usage)
	r.overs = append(r.overs, over)
}

func snap(count, limit int) models.UsageSnapshot {
	return models.UsageSnapshot{Count: count, Limit: limit}
}

func TestClassification(t *testing.T) {
	tracker := New(0, nil)

	tests := []struct {
		name     string
		usage    models.UsageSnapshot
		wantWarn bool
		wantOver bool
	}{
		{"well under", snap(10, 100), false, false},
		{"just under warn threshold", snap(79, 100), false, false},
		{"at warn threshold", snap(80, 100), true, false},
		{"near limit", snap(95, 100), true, false},
		{"at limit", snap(100, 100), false, true},
		{"past limit", snap(120, 100), false, true},
		{"zero limit is treated as no window", snap(5, 0), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantWarn, tracker.ShouldWarn(tt.usage))
			assert.Equal(t, tt.wantOver, tracker.IsOver(tt.usage))
		})
	}
}

func TestUpdateLastWriteWins(t *testing.T) {
	tracker := New(0, nil)

	assert.Nil(t, tracker.Last())

	tracker.Update(snap(10, 100))
	tracker.Update(snap(42, 100))

	last := tracker.Last()
	assert.NotNil(t, last)
	assert.Equal(t, 42, last.Count)
	assert.Equal(t, 100, last.Limit)
}

func TestNotifyOnWarnTransition(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := New(0, notifier)

	tracker.Update(snap(10, 100))
	assert.Empty(t, notifier.events)

	tracker.Update(snap(85, 100))
	assert.Len(t, notifier.events, 1)
	assert.False(t, notifier.overs[0])

	// Staying in warn does not re-emit
	tracker.Update(snap(90, 100))
	assert.Len(t, notifier.events, 1)
}

func TestNotifyOnOverTransition(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := New(0, notifier)

	tracker.Update(snap(85, 100))
	tracker.Update(snap(100, 100))

	assert.Len(t, notifier.events, 2)
	assert.False(t, notifier.overs[0])
	assert.True(t, notifier.overs[1])

	// Dropping back under and crossing again re-emits
	tracker.Update(snap(10, 100))
	tracker.Update(snap(100, 100))
	assert.Len(t, notifier.events, 3)
}

func TestCustomWarnRatio(t *testing.T) {
	tracker := New(0.5, nil)

	assert.False(t, tracker.ShouldWarn(snap(40, 100)))
	assert.True(t, tracker.ShouldWarn(snap(50, 100)))
}

func TestScenarioWarnResponse(t *testing.T) {
	// Backend responds {usage:{count:95,limit:100}, warn:true}
	tracker := New(0, nil)
	usage := snap(95, 100)

	tracker.Update(usage)
	assert.True(t, tracker.ShouldWarn(usage))
	assert.False(t, tracker.IsOver(usage))
}
