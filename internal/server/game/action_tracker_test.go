package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	domain "poker-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func req(id string) domain.ActionRequest {
	return domain.ActionRequest{
		RequestID:     id,
		TournamentID:  "t-1",
		ParticipantID: "p-1",
		Action:        domain.ActionRaise,
		Amount:        100,
	}
}

func TestActionTracker_IsDuplicate(t *testing.T) {
	tracker := NewActionTracker(time.Minute)
	defer tracker.Stop()

	assert.False(t, tracker.IsDuplicate("r-1"))
	tracker.MarkProcessed(req("r-1"))
	assert.True(t, tracker.IsDuplicate("r-1"))
	assert.False(t, tracker.IsDuplicate("r-2"))
}

func TestActionTracker_EmptyRequestIDIsNeverTracked(t *testing.T) {
	tracker := NewActionTracker(time.Minute)
	defer tracker.Stop()

	tracker.MarkProcessed(req(""))
	assert.False(t, tracker.IsDuplicate(""))
	assert.Equal(t, 0, tracker.ProcessedCount())
}

func TestActionTracker_MarkProcessedKeepsRequest(t *testing.T) {
	tracker := NewActionTracker(time.Minute)
	defer tracker.Stop()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return fixed }

	tracker.MarkProcessed(req("r-9"))

	tracker.mu.RLock()
	got, ok := tracker.processedActions["r-9"]
	tracker.mu.RUnlock()
	require.True(t, ok)
	assert.Equal(t, "t-1", got.TournamentID)
	assert.Equal(t, "p-1", got.ParticipantID)
	assert.Equal(t, domain.ActionRaise, got.Action)
	assert.Equal(t, 100, got.Amount)
	assert.Equal(t, fixed, got.Timestamp)
}

func TestActionTracker_Cleanup(t *testing.T) {
	tracker := NewActionTracker(time.Hour)
	defer tracker.Stop()
	now := time.Now()

	tracker.mu.Lock()
	tracker.processedActions["old-1"] = ProcessedAction{RequestID: "old-1", Timestamp: now.Add(-10 * time.Minute)}
	tracker.processedActions["old-2"] = ProcessedAction{RequestID: "old-2", Timestamp: now.Add(-6 * time.Minute)}
	tracker.processedActions["recent"] = ProcessedAction{RequestID: "recent", Timestamp: now.Add(-time.Minute)}
	tracker.mu.Unlock()

	assert.Equal(t, 2, tracker.Cleanup(5*time.Minute))
	assert.Equal(t, 1, tracker.ProcessedCount())
	assert.True(t, tracker.IsDuplicate("recent"))
	assert.False(t, tracker.IsDuplicate("old-1"))
}

func TestActionTracker_ConcurrentAccess(t *testing.T) {
	tracker := NewActionTracker(time.Minute)
	defer tracker.Stop()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tracker.MarkProcessed(req(fmt.Sprintf("w%d-%d", w, i)))
				tracker.IsDuplicate("some-id")
				if i%25 == 0 {
					tracker.Cleanup(time.Minute)
				}
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 400, tracker.ProcessedCount())
}

func TestActionTracker_StopTwiceIsSafe(t *testing.T) {
	tracker := NewActionTracker(time.Minute)
	tracker.MarkProcessed(req("r-1"))
	tracker.Stop()
	tracker.Stop()
	assert.True(t, tracker.IsDuplicate("r-1"))
}
