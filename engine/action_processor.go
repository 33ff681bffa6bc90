package engine

import "poker-platform/models"

// ActionProcessor applies one validated action to a hand. Each process
// method validates completely before touching any field and returns the
// chips moved into the pot.
type ActionProcessor struct {
	validator *BettingValidator
	hand      *models.HandState
}

func NewActionProcessor(hand *models.HandState) *ActionProcessor {
	return &ActionProcessor{
		validator: NewBettingValidator(hand.CurrentBet, hand.MinRaise),
		hand:      hand,
	}
}

func (ap *ActionProcessor) process(seat *models.Seat, action models.PlayerAction, amount int) (int, error) {
	switch action {
	case models.ActionFold:
		ap.processFold(seat)
		return 0, nil
	case models.ActionCheck:
		return 0, ap.processCheck(seat)
	case models.ActionCall:
		return ap.processCall(seat), nil
	case models.ActionRaise:
		return ap.processRaise(seat, amount)
	case models.ActionAllIn:
		return ap.processAllIn(seat)
	}
	return 0, ErrUnknownAction
}

func (ap *ActionProcessor) processFold(seat *models.Seat) {
	seat.Status = models.SeatFolded
	seat.LastAction = models.ActionFold
	seat.LastActionAmount = 0
}

func (ap *ActionProcessor) processCheck(seat *models.Seat) error {
	if err := ap.validator.validateCheck(seat); err != nil {
		return err
	}
	seat.LastAction = models.ActionCheck
	seat.LastActionAmount = 0
	return nil
}

// processCall moves min(to call, stack). With nothing to call it is a check.
func (ap *ActionProcessor) processCall(seat *models.Seat) int {
	callAmount := ap.hand.CurrentBet - seat.Bet
	if callAmount <= 0 {
		seat.LastAction = models.ActionCheck
		seat.LastActionAmount = 0
		return 0
	}
	moved := seat.PlaceBet(callAmount)
	seat.LastAction = models.ActionCall
	if seat.AllIn() {
		seat.LastAction = models.ActionAllIn
	}
	seat.LastActionAmount = moved
	return moved
}

func (ap *ActionProcessor) processRaise(seat *models.Seat, total int) (int, error) {
	if err := ap.validator.validateRaise(seat, total); err != nil {
		return 0, err
	}
	moved := seat.PlaceBet(total - seat.Bet)
	seat.LastAction = models.ActionRaise
	if seat.AllIn() {
		seat.LastAction = models.ActionAllIn
	}
	seat.LastActionAmount = moved
	ap.applyRaise(seat, total)
	return moved, nil
}

// processAllIn pushes the whole stack: a raise when it tops the current
// bet, otherwise a call for less.
func (ap *ActionProcessor) processAllIn(seat *models.Seat) (int, error) {
	if err := ap.validator.validateAllIn(seat); err != nil {
		return 0, err
	}
	total := seat.Bet + seat.Stack
	moved := seat.PlaceBet(seat.Stack)
	seat.LastAction = models.ActionAllIn
	seat.LastActionAmount = moved
	if total > ap.hand.CurrentBet {
		ap.applyRaise(seat, total)
	}
	return moved, nil
}

// applyRaise moves the bet to match and re-opens the round for everyone
// else. Only a full raise resets the minimum raise size.
func (ap *ActionProcessor) applyRaise(seat *models.Seat, total int) {
	if ap.validator.isFullRaise(total) {
		ap.hand.MinRaise = total - ap.hand.CurrentBet
	}
	ap.hand.CurrentBet = total
	ap.hand.LastRaiserID = seat.ParticipantID
	reopenBettingForSeats(ap.hand.Seats, seat)
}
