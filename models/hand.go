package models

import "time"

type Phase string

const (
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

// NoTurn marks a hand with no awaited actor.
const NoTurn = -1

// Pot is one layer of the hand's contributions. Threshold is the per-seat
// contribution ceiling of the layer.
type Pot struct {
	Amount    int      `json:"amount"`
	Threshold int      `json:"threshold"`
	Eligible  []string `json:"eligible"`
}

type Winner struct {
	ParticipantID string `json:"participantId"`
	PotIndex      int    `json:"potIndex"`
	Amount        int    `json:"amount"`
	HandRank      string `json:"handRank"`
	HandCards     []Card `json:"handCards,omitempty"`
}

// HandState is the full state of the one live hand of a tournament. Seats
// are kept in ascending seat-number order; positions index into Seats.
type HandState struct {
	TournamentID       string     `json:"tournamentId"`
	HandNumber         int        `json:"handNumber"`
	Version            int        `json:"version"`
	Phase              Phase      `json:"phase"`
	Deck               Deck       `json:"deck"`
	CommunityCards     []Card     `json:"communityCards"`
	Pot                int        `json:"pot"`
	Pots               []Pot      `json:"pots,omitempty"`
	CurrentBet         int        `json:"currentBet"`
	MinRaise           int        `json:"minRaise"`
	LastRaiserID       string     `json:"lastRaiserId,omitempty"`
	SmallBlind         int        `json:"smallBlind"`
	BigBlind           int        `json:"bigBlind"`
	DealerPosition     int        `json:"dealerPosition"`
	SmallBlindPosition int        `json:"smallBlindPosition"`
	BigBlindPosition   int        `json:"bigBlindPosition"`
	TurnPosition       int        `json:"turnPosition"`
	Seats              []*Seat    `json:"seats"`
	ChipsInPlay        int        `json:"chipsInPlay"`
	Winners            []Winner   `json:"winners,omitempty"`
	HandLabel          string     `json:"handLabel,omitempty"`
	Concluded          bool       `json:"concluded"`
	ActionDeadline     *time.Time `json:"actionDeadline,omitempty"`
	IntegrityFault     string     `json:"integrityFault,omitempty"`
	StartedAt          time.Time  `json:"startedAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// TurnHolder returns the seat whose action is awaited, or nil.
func (h *HandState) TurnHolder() *Seat {
	if h.Concluded || h.TurnPosition < 0 || h.TurnPosition >= len(h.Seats) {
		return nil
	}
	return h.Seats[h.TurnPosition]
}

func (h *HandState) SeatByParticipant(participantID string) *Seat {
	for _, s := range h.Seats {
		if s.ParticipantID == participantID {
			return s
		}
	}
	return nil
}

// PublicView strips the deck and every hole card except viewer's.
func (h *HandState) PublicView(viewerParticipantID string) *HandState {
	cp := *h
	cp.Deck = Deck{}
	cp.Seats = make([]*Seat, len(h.Seats))
	for i, s := range h.Seats {
		sc := *s
		if s.ParticipantID != viewerParticipantID && !(h.Concluded && !s.Folded()) {
			sc.HoleCards = nil
		}
		cp.Seats[i] = &sc
	}
	return &cp
}

// HandHistory is the append-only record of one concluded hand.
type HandHistory struct {
	ID             int64     `json:"id"`
	TournamentID   string    `json:"tournamentId"`
	HandNumber     int       `json:"handNumber"`
	Pot            int       `json:"pot"`
	Winners        []Winner  `json:"winners"`
	CommunityCards []Card    `json:"communityCards"`
	HandLabel      string    `json:"handLabel"`
	CreatedAt      time.Time `json:"createdAt"`
}
