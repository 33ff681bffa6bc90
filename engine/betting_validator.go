package engine

import (
	"fmt"

	"poker-platform/models"
)

type BettingValidator struct {
	currentBet int
	minRaise   int
}

func NewBettingValidator(currentBet, minRaise int) *BettingValidator {
	return &BettingValidator{
		currentBet: currentBet,
		minRaise:   minRaise,
	}
}

func (bv *BettingValidator) validateCheck(seat *models.Seat) error {
	if seat.Bet < bv.currentBet {
		return ErrCannotCheck
	}
	return nil
}

// validateRaise checks a raise to total. An all-in may fall short of the
// minimum raise; anything else must be a full raise.
func (bv *BettingValidator) validateRaise(seat *models.Seat, total int) error {
	if total <= bv.currentBet {
		return fmt.Errorf("%w: raise to %d, current bet %d", ErrRaiseNotAboveBet, total, bv.currentBet)
	}
	delta := total - seat.Bet
	if delta > seat.Stack {
		return fmt.Errorf("%w: raise needs %d, stack is %d", ErrInsufficientChips, delta, seat.Stack)
	}
	if delta < seat.Stack && total < bv.minTotalBet() {
		return fmt.Errorf("%w: raise must be at least %d (current bet %d + min raise %d)",
			ErrRaiseTooSmall, bv.minTotalBet(), bv.currentBet, bv.minRaise)
	}
	return nil
}

func (bv *BettingValidator) validateAllIn(seat *models.Seat) error {
	if seat.Stack <= 0 {
		return ErrNoChips
	}
	return nil
}

func (bv *BettingValidator) minTotalBet() int {
	return bv.currentBet + bv.minRaise
}

func (bv *BettingValidator) isFullRaise(total int) bool {
	return total >= bv.minTotalBet()
}
