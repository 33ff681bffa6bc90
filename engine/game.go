package engine

import (
	"errors"
	"fmt"

	"poker-platform/models"
)

// Game drives one HandState through its betting rounds. It holds no state
// of its own; callers load the hand, apply actions and persist the result.
// A Game is not safe for concurrent use.
type Game struct {
	hand *models.HandState
}

func NewGame(hand *models.HandState) *Game {
	return &Game{hand: hand}
}

func (g *Game) Hand() *models.HandState {
	return g.hand
}

// ProcessAction applies one action for participantID. Validation happens
// before any mutation, so a rejected action leaves the hand untouched.
func (g *Game) ProcessAction(participantID string, action models.PlayerAction, amount int) error {
	seat, err := NewTurnValidator(g.hand).ValidateTurn(participantID)
	if err != nil {
		return err
	}
	if !action.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	moved, err := NewActionProcessor(g.hand).process(seat, action, amount)
	if err != nil {
		return err
	}
	g.hand.Pot += moved
	seat.HasActed = true
	g.hand.ActionDeadline = nil

	if countSeats(g.hand.Seats, isNotFolded) <= 1 {
		err = g.completeHand()
	} else if g.isBettingRoundComplete() {
		err = g.advanceToNextRound()
	} else {
		g.hand.TurnPosition = NewPositionFinder(g.hand.Seats).findNextToAct(g.hand.TurnPosition)
	}
	if err != nil {
		return err
	}
	return g.verifyIntegrity()
}

// DefaultAction is what a seat does when it runs out of time: check when
// that is free, fold otherwise.
func (g *Game) DefaultAction(seat *models.Seat) models.PlayerAction {
	if seat.Bet >= g.hand.CurrentBet {
		return models.ActionCheck
	}
	return models.ActionFold
}

// isBettingRoundComplete holds when every seat that can still act has
// acted and matched the bet, or when at most one such seat remains and it
// already covers every other live seat. The lone seat is measured against
// what the others actually put in, not CurrentBet: a big blind all-in for
// less than the small blind leaves CurrentBet above anything there is to
// call.
func (g *Game) isBettingRoundComplete() bool {
	if countSeats(g.hand.Seats, isNotFolded) <= 1 {
		return true
	}
	var lone *models.Seat
	actors := 0
	pending := 0
	for _, s := range g.hand.Seats {
		if !canAct(s) {
			continue
		}
		actors++
		lone = s
		if !s.HasActed || s.Bet < g.hand.CurrentBet {
			pending++
		}
	}
	if pending == 0 {
		return true
	}
	return actors == 1 && lone.Bet >= highestOtherBet(g.hand.Seats, lone)
}

func highestOtherBet(seats []*models.Seat, except *models.Seat) int {
	high := 0
	for _, s := range seats {
		if s != except && isNotFolded(s) && s.Bet > high {
			high = s.Bet
		}
	}
	return high
}

// advanceToNextRound closes the round: pots are recomputed, per-round
// fields reset and the next street dealt. When betting is no longer
// possible the remaining board is dealt straight through to showdown.
func (g *Game) advanceToNextRound() error {
	h := g.hand
	h.Pots = CalculatePots(h.Seats)
	resetSeatsForNewRound(h.Seats)
	h.CurrentBet = 0
	h.MinRaise = h.BigBlind
	h.LastRaiserID = ""
	h.TurnPosition = models.NoTurn

	if countSeats(h.Seats, isNotFolded) <= 1 {
		return g.completeHand()
	}

	if countSeats(h.Seats, canAct) <= 1 {
		for h.Phase != models.PhaseRiver {
			if err := g.dealNextStreet(); err != nil {
				return g.fault(err)
			}
		}
		return g.completeHand()
	}

	if h.Phase == models.PhaseRiver {
		return g.completeHand()
	}
	if err := g.dealNextStreet(); err != nil {
		return g.fault(err)
	}
	h.TurnPosition = NewPositionFinder(h.Seats).findNextToAct(h.DealerPosition)
	return nil
}

func (g *Game) dealNextStreet() error {
	h := g.hand
	switch h.Phase {
	case models.PhasePreflop:
		cards, err := h.Deck.DealMultiple(3)
		if err != nil {
			return err
		}
		h.CommunityCards = append(h.CommunityCards, cards...)
		h.Phase = models.PhaseFlop
	case models.PhaseFlop, models.PhaseTurn:
		card, err := h.Deck.Deal()
		if err != nil {
			return err
		}
		h.CommunityCards = append(h.CommunityCards, card)
		if h.Phase == models.PhaseFlop {
			h.Phase = models.PhaseTurn
		} else {
			h.Phase = models.PhaseRiver
		}
	default:
		return fmt.Errorf("no street follows %s", h.Phase)
	}
	return nil
}

// completeHand pays every pot and marks the hand concluded.
func (g *Game) completeHand() error {
	h := g.hand
	h.Pots = CalculatePots(h.Seats)
	h.TurnPosition = models.NoTurn
	h.ActionDeadline = nil

	winners, err := DistributeWinnings(h.Pots, h.Seats, h.CommunityCards, h.DealerPosition)
	if err != nil {
		if errors.Is(err, ErrIntegrity) {
			err = errors.New("pot has no eligible contender")
		}
		return g.fault(err)
	}

	paid := 0
	for _, w := range winners {
		seat := findSeatByID(h.Seats, w.ParticipantID)
		if seat == nil {
			return g.fault(fmt.Errorf("winner %s is not seated", w.ParticipantID))
		}
		seat.Stack += w.Amount
		paid += w.Amount
	}
	if paid != h.Pot {
		return g.fault(fmt.Errorf("paid %d from a pot of %d", paid, h.Pot))
	}

	h.Pot -= paid
	h.Winners = winners
	if len(winners) > 0 {
		h.HandLabel = winners[0].HandRank
	}
	h.Phase = models.PhaseShowdown
	h.Concluded = true
	return nil
}

// verifyIntegrity reconciles the chip accounting: the pot must equal what
// was put in and not yet paid, and stacks plus pot must equal the chips the
// hand started with.
func (g *Game) verifyIntegrity() error {
	h := g.hand
	if h.IntegrityFault != "" {
		return fmt.Errorf("%w: %s", ErrIntegrity, h.IntegrityFault)
	}
	stacks := sumStacks(h.Seats)
	for _, s := range h.Seats {
		if s.Stack < 0 {
			return g.fault(fmt.Errorf("seat %d has a negative stack", s.SeatNumber))
		}
	}
	if h.Pot < 0 {
		return g.fault(fmt.Errorf("pot is negative: %d", h.Pot))
	}
	if !h.Concluded && h.Pot != sumInvested(h.Seats) {
		return g.fault(fmt.Errorf("pot %d does not match contributions %d", h.Pot, sumInvested(h.Seats)))
	}
	if stacks+h.Pot != h.ChipsInPlay {
		return g.fault(fmt.Errorf("stacks %d plus pot %d do not match %d chips in play", stacks, h.Pot, h.ChipsInPlay))
	}
	return nil
}

// fault freezes the hand. Automation skips faulted hands until someone
// clears them by hand.
func (g *Game) fault(cause error) error {
	g.hand.IntegrityFault = cause.Error()
	g.hand.TurnPosition = models.NoTurn
	return fmt.Errorf("%w: %v", ErrIntegrity, cause)
}
