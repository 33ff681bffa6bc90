package game

import (
	"sync"
	"time"

	domain "poker-platform/models"

	"github.com/rs/zerolog/log"
)

// ProcessedAction is an action request that was applied to a hand.
type ProcessedAction struct {
	RequestID     string
	TournamentID  string
	ParticipantID string
	Action        domain.PlayerAction
	Amount        int
	Timestamp     time.Time
}

// ActionTracker remembers applied request ids so a redelivered submission
// is not applied twice.
type ActionTracker struct {
	mu               sync.RWMutex
	processedActions map[string]ProcessedAction // requestID -> action
	retention        time.Duration
	now              func() time.Time
	stopCleanup      chan struct{}
	stopOnce         sync.Once
}

// NewActionTracker starts a tracker that forgets ids after retention.
func NewActionTracker(retention time.Duration) *ActionTracker {
	if retention <= 0 {
		retention = 5 * time.Minute
	}
	at := &ActionTracker{
		processedActions: make(map[string]ProcessedAction),
		retention:        retention,
		now:              time.Now,
		stopCleanup:      make(chan struct{}),
	}
	go at.cleanupLoop()
	return at
}

// IsDuplicate reports whether requestID was already applied. Requests
// without an id are never duplicates.
func (at *ActionTracker) IsDuplicate(requestID string) bool {
	if requestID == "" {
		return false
	}
	at.mu.RLock()
	defer at.mu.RUnlock()
	// Any earlier use counts, whoever sent it.
	_, exists := at.processedActions[requestID]
	return exists
}

// MarkProcessed records an applied request.
func (at *ActionTracker) MarkProcessed(req domain.ActionRequest) {
	if req.RequestID == "" {
		return
	}
	at.mu.Lock()
	defer at.mu.Unlock()
	at.processedActions[req.RequestID] = ProcessedAction{
		RequestID:     req.RequestID,
		TournamentID:  req.TournamentID,
		ParticipantID: req.ParticipantID,
		Action:        req.Action,
		Amount:        req.Amount,
		Timestamp:     at.now(),
	}
}

func (at *ActionTracker) ProcessedCount() int {
	at.mu.RLock()
	defer at.mu.RUnlock()
	return len(at.processedActions)
}

// Cleanup drops entries older than retention and returns how many went.
func (at *ActionTracker) Cleanup(retention time.Duration) int {
	at.mu.Lock()
	defer at.mu.Unlock()

	cutoff := at.now().Add(-retention)
	removed := 0
	for id, action := range at.processedActions {
		if action.Timestamp.Before(cutoff) {
			delete(at.processedActions, id)
			removed++
		}
	}
	return removed
}

func (at *ActionTracker) cleanupLoop() {
	ticker := time.NewTicker(at.retention)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := at.Cleanup(at.retention); removed > 0 {
				log.Debug().Str("component", "actions").Int("removed", removed).Msg("expired request ids")
			}
		case <-at.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (at *ActionTracker) Stop() {
	at.stopOnce.Do(func() { close(at.stopCleanup) })
}
