package engine

import (
	"fmt"

	"poker-platform/models"
)

// TurnValidator decides whether a participant may act on the hand right now.
type TurnValidator struct {
	hand *models.HandState
}

func NewTurnValidator(hand *models.HandState) *TurnValidator {
	return &TurnValidator{hand: hand}
}

// ValidateTurn returns the acting seat or the reason the request is stale.
func (tv *TurnValidator) ValidateTurn(participantID string) (*models.Seat, error) {
	if tv.hand.IntegrityFault != "" {
		return nil, fmt.Errorf("%w: %s", ErrIntegrity, tv.hand.IntegrityFault)
	}
	if tv.hand.Concluded {
		return nil, ErrHandConcluded
	}

	seat := findSeatByID(tv.hand.Seats, participantID)
	if seat == nil {
		return nil, ErrParticipantNotSeated
	}
	if !seat.CanAct() {
		return nil, fmt.Errorf("%w (status %s)", ErrCannotAct, seat.Status)
	}

	current := tv.hand.TurnHolder()
	if current == nil || current.ParticipantID != participantID {
		holder := "none"
		if current != nil {
			holder = current.ParticipantID
		}
		return nil, fmt.Errorf("%w (current: %s, requested: %s)", ErrNotYourTurn, holder, participantID)
	}
	return seat, nil
}
