package engine

import (
	"sort"

	"poker-platform/models"
)

// CalculatePots layers the hand's contributions into a main pot and side
// pots. Every distinct contribution level reached by a non-folded seat
// closes one layer; a layer takes, from every seat including folded ones,
// the part of its contribution falling between the previous level and this
// one. Eligibility is the non-folded seats that reached the level, so each
// layer is contested by strictly fewer seats than the one below it.
func CalculatePots(seats []*models.Seat) []models.Pot {
	levelSet := make(map[int]struct{})
	for _, s := range seats {
		if s != nil && !s.Folded() && s.TotalInvested > 0 {
			levelSet[s.TotalInvested] = struct{}{}
		}
	}
	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	if len(levels) == 0 {
		return unlayeredPot(seats)
	}

	pots := make([]models.Pot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		pot := models.Pot{Threshold: level}
		for _, s := range seats {
			if s == nil {
				continue
			}
			pot.Amount += layerShare(s.TotalInvested, prev, level)
			if !s.Folded() && s.TotalInvested >= level {
				pot.Eligible = append(pot.Eligible, s.ParticipantID)
			}
		}
		pots = append(pots, pot)
		prev = level
	}

	// Folded money above the highest live level has nobody left to
	// contest it; it rides with the top layer.
	if len(pots) > 0 {
		for _, s := range seats {
			if s != nil && s.TotalInvested > prev {
				pots[len(pots)-1].Amount += s.TotalInvested - prev
			}
		}
	}
	return pots
}

// unlayeredPot covers hands where no live seat put chips in, which only
// happens with zero blinds.
func unlayeredPot(seats []*models.Seat) []models.Pot {
	pot := models.Pot{}
	for _, s := range seats {
		if s == nil {
			continue
		}
		pot.Amount += s.TotalInvested
		if !s.Folded() {
			pot.Eligible = append(pot.Eligible, s.ParticipantID)
		}
	}
	if pot.Amount == 0 {
		return nil
	}
	return []models.Pot{pot}
}

func layerShare(invested, from, to int) int {
	if invested <= from {
		return 0
	}
	if invested >= to {
		return to - from
	}
	return invested - from
}

// DistributeWinnings settles each pot, main pot first, among its eligible
// seats. Ties split by integer division and the odd chips all go to the
// first tied winner in seating order starting left of the dealer. The
// returned amounts sum to exactly the pots' total.
func DistributeWinnings(pots []models.Pot, seats []*models.Seat, communityCards []models.Card, dealerPos int) ([]models.Winner, error) {
	winners := make([]models.Winner, 0)
	evals := make(map[string]HandEvaluation)
	order := seatingOrderFrom(seats, dealerPos)

	for potIdx, pot := range pots {
		if pot.Amount == 0 {
			continue
		}
		contenders := make([]*models.Seat, 0, len(pot.Eligible))
		for _, s := range order {
			if containsID(pot.Eligible, s.ParticipantID) && !s.Folded() {
				contenders = append(contenders, s)
			}
		}
		if len(contenders) == 0 {
			// Only reachable through corrupted state; refuse rather than burn chips.
			return nil, ErrIntegrity
		}

		if len(contenders) == 1 {
			label := "Uncontested"
			if ev, ok, err := evaluateSeat(evals, contenders[0], communityCards); err != nil {
				return nil, err
			} else if ok && countLive(seats) > 1 {
				label = ev.Key.String()
			}
			winners = append(winners, models.Winner{
				ParticipantID: contenders[0].ParticipantID,
				PotIndex:      potIdx,
				Amount:        pot.Amount,
				HandRank:      label,
			})
			continue
		}

		var best []*models.Seat
		var bestEval HandEvaluation
		for _, s := range contenders {
			ev, _, err := evaluateSeat(evals, s, communityCards)
			if err != nil {
				return nil, err
			}
			switch cmp := compareToBest(best, ev, bestEval); {
			case cmp > 0:
				best = []*models.Seat{s}
				bestEval = ev
			case cmp == 0:
				best = append(best, s)
			}
		}

		share := pot.Amount / len(best)
		remainder := pot.Amount % len(best)
		for i, s := range best {
			amount := share
			if i == 0 {
				amount += remainder
			}
			winners = append(winners, models.Winner{
				ParticipantID: s.ParticipantID,
				PotIndex:      potIdx,
				Amount:        amount,
				HandRank:      evals[s.ParticipantID].Key.String(),
				HandCards:     evals[s.ParticipantID].Cards,
			})
		}
	}
	return winners, nil
}

func compareToBest(best []*models.Seat, ev, bestEval HandEvaluation) int {
	if len(best) == 0 {
		return 1
	}
	return ev.Key.Compare(bestEval.Key)
}

// evaluateSeat memoizes evaluations across pots. ok is false when the board
// is too short to evaluate, which only happens on a fold-out.
func evaluateSeat(cache map[string]HandEvaluation, s *models.Seat, community []models.Card) (HandEvaluation, bool, error) {
	if ev, ok := cache[s.ParticipantID]; ok {
		return ev, true, nil
	}
	if len(s.HoleCards)+len(community) < 5 {
		return HandEvaluation{}, false, nil
	}
	ev, err := EvaluateHand(s.HoleCards, community)
	if err != nil {
		return HandEvaluation{}, false, err
	}
	cache[s.ParticipantID] = ev
	return ev, true, nil
}

// seatingOrderFrom lists seats clockwise starting with the seat after pos.
func seatingOrderFrom(seats []*models.Seat, pos int) []*models.Seat {
	n := len(seats)
	out := make([]*models.Seat, 0, n)
	if n == 0 {
		return out
	}
	if pos < 0 || pos >= n {
		pos = n - 1
	}
	for i := 1; i <= n; i++ {
		if s := seats[(pos+i)%n]; s != nil {
			out = append(out, s)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func countLive(seats []*models.Seat) int {
	n := 0
	for _, s := range seats {
		if s != nil && !s.Folded() {
			n++
		}
	}
	return n
}
