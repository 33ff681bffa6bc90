// Package bot decides actions for automated seats.
//
// The policy is a plain heuristic meant to keep tables moving. It is not a
// model of good poker: it raises a handful of premium starting hands,
// leans on made hands after the flop, checks when it can, calls cheap
// bets and folds the rest.
package bot

import (
	"poker-platform/engine"
	"poker-platform/models"
)

// View is what one seat can see when it is asked to act.
type View struct {
	Phase          models.Phase
	HoleCards      []models.Card
	CommunityCards []models.Card
	Stack          int
	RoundBet       int
	ToMatch        int
	MinRaise       int
	BigBlind       int
}

// Decision is an action plus, for raises, the total bet to raise to.
type Decision struct {
	Action    models.PlayerAction
	Amount    int
	Reasoning string
}

// callFraction is the largest share of the stack the bot will call off
// without a hand.
const callFraction = 5

// ViewFor projects the hand onto one seat.
func ViewFor(h *models.HandState, seat *models.Seat) View {
	return View{
		Phase:          h.Phase,
		HoleCards:      seat.HoleCards,
		CommunityCards: h.CommunityCards,
		Stack:          seat.Stack,
		RoundBet:       seat.Bet,
		ToMatch:        h.CurrentBet,
		MinRaise:       h.MinRaise,
		BigBlind:       h.BigBlind,
	}
}

// Decide always returns an action that is legal for v.
func Decide(v View) Decision {
	toCall := v.ToMatch - v.RoundBet
	if toCall < 0 {
		toCall = 0
	}
	if v.Stack <= 0 {
		// Nothing behind: only a free check or a fold is possible.
		if toCall == 0 {
			return Decision{Action: models.ActionCheck, Reasoning: "no chips behind"}
		}
		return Decision{Action: models.ActionFold, Reasoning: "no chips behind"}
	}

	if v.Phase == models.PhasePreflop && premium(v.HoleCards) {
		return raise(v, "premium starting hand")
	}
	if v.Phase != models.PhasePreflop && len(v.CommunityCards) >= 3 {
		if eval, err := engine.EvaluateHand(v.HoleCards, v.CommunityCards); err == nil {
			if eval.Key.Rank >= engine.ThreeOfAKind {
				return raise(v, "strong made hand: "+eval.Key.String())
			}
			if eval.Key.Rank >= engine.TwoPair && toCall > 0 && toCall <= v.Stack/2 {
				return Decision{Action: models.ActionCall, Reasoning: "decent made hand"}
			}
		}
	}

	if toCall == 0 {
		return Decision{Action: models.ActionCheck, Reasoning: "nothing to call"}
	}
	if toCall*callFraction <= v.Stack {
		return Decision{Action: models.ActionCall, Reasoning: "cheap call"}
	}
	return Decision{Action: models.ActionFold, Reasoning: "bet too large"}
}

// raise sizes a raise to three times the bet, at least a full raise, and
// shoves when that would use most of the stack.
func raise(v View, why string) Decision {
	target := v.ToMatch * 3
	step := v.MinRaise
	if step < v.BigBlind {
		step = v.BigBlind
	}
	if step < 1 {
		step = 1
	}
	if target < v.ToMatch+step {
		target = v.ToMatch + step
	}
	if target-v.RoundBet >= v.Stack {
		return Decision{Action: models.ActionAllIn, Reasoning: why + ", all in"}
	}
	return Decision{Action: models.ActionRaise, Amount: target, Reasoning: why}
}

// premium is pocket tens or better, ace-king, or suited ace-queen.
func premium(hole []models.Card) bool {
	if len(hole) != 2 {
		return false
	}
	a, b := hole[0].Value(), hole[1].Value()
	if a < b {
		a, b = b, a
	}
	if a == b {
		return a >= 10
	}
	if a == 14 && b == 13 {
		return true
	}
	return a == 14 && b == 12 && hole[0].Suit == hole[1].Suit
}
