package models

type SeatStatus string

const (
	SeatActive SeatStatus = "active"
	SeatFolded SeatStatus = "folded"
	SeatAllIn  SeatStatus = "allin"
)

type PlayerAction string

const (
	ActionFold  PlayerAction = "fold"
	ActionCall  PlayerAction = "call"
	ActionRaise PlayerAction = "raise"
	ActionCheck PlayerAction = "check"
	ActionAllIn PlayerAction = "allin"
)

func (a PlayerAction) Valid() bool {
	switch a {
	case ActionFold, ActionCall, ActionRaise, ActionCheck, ActionAllIn:
		return true
	}
	return false
}

// Seat is one participant's state inside a single hand. Stack is the live
// stack for the duration of the hand; the participant record is only
// updated when the hand concludes.
type Seat struct {
	ParticipantID    string       `json:"participantId"`
	Occupant         Occupant     `json:"occupant"`
	SeatNumber       int          `json:"seatNumber"`
	Stack            int          `json:"stack"`
	Status           SeatStatus   `json:"status"`
	Bet              int          `json:"bet"`
	TotalInvested    int          `json:"totalInvested"`
	HoleCards        []Card       `json:"holeCards,omitempty"`
	HasActed         bool         `json:"hasActed"`
	LastAction       PlayerAction `json:"lastAction,omitempty"`
	LastActionAmount int          `json:"lastActionAmount,omitempty"`
}

func NewSeat(participantID string, occupant Occupant, seatNumber, stack int) *Seat {
	return &Seat{
		ParticipantID: participantID,
		Occupant:      occupant,
		SeatNumber:    seatNumber,
		Stack:         stack,
		Status:        SeatActive,
		HoleCards:     make([]Card, 0, 2),
	}
}

func (s *Seat) Folded() bool { return s.Status == SeatFolded }
func (s *Seat) AllIn() bool  { return s.Status == SeatAllIn }

// CanAct reports whether the seat still owes decisions this hand.
func (s *Seat) CanAct() bool { return s.Status == SeatActive }

// PlaceBet moves amount from the stack into the current round. Callers
// validate affordability first; the amount is capped at the stack and the
// seat goes all-in when it empties.
func (s *Seat) PlaceBet(amount int) int {
	if amount >= s.Stack {
		amount = s.Stack
		s.Status = SeatAllIn
	}
	s.Stack -= amount
	s.Bet += amount
	s.TotalInvested += amount
	return amount
}
