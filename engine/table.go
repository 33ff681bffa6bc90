package engine

import (
	"math/rand/v2"
	"sort"
	"time"

	"poker-platform/models"
)

// SeatInput is a participant eligible for the next hand.
type SeatInput struct {
	ParticipantID string
	Occupant      models.Occupant
	SeatNumber    int
	Stack         int
}

// HandConfig carries everything about the next hand that is not a seat.
type HandConfig struct {
	TournamentID       string
	HandNumber         int
	PreviousButtonSeat int
	SmallBlind         int
	BigBlind           int
	Rng                *rand.Rand
	Now                time.Time
}

// NewHand seats the players, moves the button, posts blinds and deals hole
// cards. If nobody is left to make a decision (blinds put everyone
// all-in) the board is run out and the hand comes back concluded.
func NewHand(cfg HandConfig, players []SeatInput) (*models.HandState, error) {
	inputs := make([]SeatInput, 0, len(players))
	for _, p := range players {
		if p.Stack > 0 {
			inputs = append(inputs, p)
		}
	}
	if len(inputs) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].SeatNumber < inputs[j].SeatNumber })

	rng := cfg.Rng
	if rng == nil {
		rng = models.NewRand()
	}

	seats := make([]*models.Seat, len(inputs))
	chips := 0
	for i, p := range inputs {
		seats[i] = models.NewSeat(p.ParticipantID, p.Occupant, p.SeatNumber, p.Stack)
		chips += p.Stack
	}

	pf := NewPositionFinder(seats)
	dealerPos := pf.findDealer(cfg.PreviousButtonSeat)
	sbPos, bbPos := pf.calculateBlindPositions(dealerPos)

	hand := &models.HandState{
		TournamentID:       cfg.TournamentID,
		HandNumber:         cfg.HandNumber,
		Phase:              models.PhasePreflop,
		Deck:               *models.NewDeck(rng),
		CommunityCards:     make([]models.Card, 0, 5),
		SmallBlind:         cfg.SmallBlind,
		BigBlind:           cfg.BigBlind,
		CurrentBet:         cfg.BigBlind,
		MinRaise:           cfg.BigBlind,
		DealerPosition:     dealerPos,
		SmallBlindPosition: sbPos,
		BigBlindPosition:   bbPos,
		TurnPosition:       models.NoTurn,
		Seats:              seats,
		ChipsInPlay:        chips,
		StartedAt:          cfg.Now,
		UpdatedAt:          cfg.Now,
	}

	hand.Pot += seats[sbPos].PlaceBet(cfg.SmallBlind)
	hand.Pot += seats[bbPos].PlaceBet(cfg.BigBlind)

	for _, s := range seats {
		cards, err := hand.Deck.DealMultiple(2)
		if err != nil {
			return nil, err
		}
		s.HoleCards = cards
	}

	g := NewGame(hand)
	hand.TurnPosition = pf.findNextToAct(bbPos)
	if g.isBettingRoundComplete() {
		if err := g.advanceToNextRound(); err != nil {
			return hand, err
		}
	}
	return hand, g.verifyIntegrity()
}
