package engine

import "poker-platform/models"

type SeatFilter func(*models.Seat) bool

func isNotFolded(s *models.Seat) bool {
	return s != nil && !s.Folded()
}

func canAct(s *models.Seat) bool {
	return s != nil && s.CanAct()
}

func countSeats(seats []*models.Seat, filter SeatFilter) int {
	count := 0
	for _, s := range seats {
		if filter(s) {
			count++
		}
	}
	return count
}

func findSeatByID(seats []*models.Seat, participantID string) *models.Seat {
	for _, s := range seats {
		if s != nil && s.ParticipantID == participantID {
			return s
		}
	}
	return nil
}

func resetSeatsForNewRound(seats []*models.Seat) {
	for _, s := range seats {
		if s != nil {
			s.Bet = 0
			s.HasActed = false
		}
	}
}

// reopenBettingForSeats clears HasActed for everyone but the raiser who can
// still respond.
func reopenBettingForSeats(seats []*models.Seat, except *models.Seat) {
	for _, s := range seats {
		if s != nil && s != except && canAct(s) {
			s.HasActed = false
		}
	}
}

func sumStacks(seats []*models.Seat) int {
	total := 0
	for _, s := range seats {
		if s != nil {
			total += s.Stack
		}
	}
	return total
}

func sumInvested(seats []*models.Seat) int {
	total := 0
	for _, s := range seats {
		if s != nil {
			total += s.TotalInvested
		}
	}
	return total
}
