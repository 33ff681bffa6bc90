package engine

import "poker-platform/models"

type PositionFinder struct {
	seats []*models.Seat
}

func NewPositionFinder(seats []*models.Seat) *PositionFinder {
	return &PositionFinder{seats: seats}
}

// findNext walks clockwise from currentPos and returns the first position
// matching filter, or NoTurn when none does.
func (pf *PositionFinder) findNext(currentPos int, filter SeatFilter) int {
	n := len(pf.seats)
	if n == 0 {
		return models.NoTurn
	}
	if currentPos < 0 {
		currentPos = n - 1
	}
	for i := 1; i <= n; i++ {
		pos := (currentPos + i) % n
		if filter(pf.seats[pos]) {
			return pos
		}
	}
	return models.NoTurn
}

func (pf *PositionFinder) findNextToAct(currentPos int) int {
	return pf.findNext(currentPos, canAct)
}

// findDealer picks the first seat whose number follows the previous
// button, wrapping around the table.
func (pf *PositionFinder) findDealer(previousButtonSeat int) int {
	for i, s := range pf.seats {
		if s.SeatNumber > previousButtonSeat {
			return i
		}
	}
	return 0
}

// calculateBlindPositions follows the heads-up rule: with two players the
// dealer posts the small blind.
func (pf *PositionFinder) calculateBlindPositions(dealerPos int) (int, int) {
	n := len(pf.seats)
	if n == 2 {
		return dealerPos, (dealerPos + 1) % n
	}
	sbPos := (dealerPos + 1) % n
	bbPos := (sbPos + 1) % n
	return sbPos, bbPos
}
