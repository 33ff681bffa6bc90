package engine

import (
	"fmt"
	"sort"

	"poker-platform/models"
)

type HandRank int

const (
	HighCard HandRank = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (hr HandRank) String() string {
	names := []string{"High Card", "One Pair", "Two Pair", "Three of a Kind", "Straight", "Flush", "Full House", "Four of a Kind", "Straight Flush", "Royal Flush"}
	if hr < 0 || int(hr) >= len(names) {
		return fmt.Sprintf("HandRank(%d)", int(hr))
	}
	return names[hr]
}

// StrengthKey totally orders made hands. Tiebreak holds the rank values
// that decide between hands of the same category, most significant first,
// zero padded. Two keys compare equal exactly when the hands split.
type StrengthKey struct {
	Rank     HandRank `json:"rank"`
	Tiebreak [5]int   `json:"tiebreak"`
}

// Compare returns 1 if k beats o, -1 if o beats k and 0 on a tie.
func (k StrengthKey) Compare(o StrengthKey) int {
	if k.Rank != o.Rank {
		if k.Rank > o.Rank {
			return 1
		}
		return -1
	}
	for i := range k.Tiebreak {
		if k.Tiebreak[i] != o.Tiebreak[i] {
			if k.Tiebreak[i] > o.Tiebreak[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

func (k StrengthKey) String() string { return k.Rank.String() }

type HandEvaluation struct {
	Key   StrengthKey   `json:"key"`
	Cards []models.Card `json:"cards"`
}

// EvaluateHand scores the best five-card hand from hole and community cards.
func EvaluateHand(holeCards, communityCards []models.Card) (HandEvaluation, error) {
	all := make([]models.Card, 0, len(holeCards)+len(communityCards))
	all = append(all, holeCards...)
	all = append(all, communityCards...)
	return Evaluate(all)
}

// Evaluate scores the best five-card hand among 5 to 7 cards.
func Evaluate(cards []models.Card) (HandEvaluation, error) {
	if len(cards) < 5 {
		return HandEvaluation{}, ErrTooFewCards
	}
	if len(cards) > 7 {
		return HandEvaluation{}, ErrTooManyCards
	}

	sorted := append([]models.Card(nil), cards...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value() > sorted[j].Value()
	})

	checks := []func([]models.Card) (HandEvaluation, bool){
		checkStraightFlush,
		checkFourOfAKind,
		checkFullHouse,
		checkFlush,
		checkStraight,
		checkThreeOfAKind,
		checkTwoPair,
		checkOnePair,
	}
	for _, check := range checks {
		if eval, ok := check(sorted); ok {
			return eval, nil
		}
	}
	return checkHighCard(sorted), nil
}

// rankGroups buckets cards by value. Groups come back ordered by size and
// then by value, both descending.
func rankGroups(cards []models.Card) [][]models.Card {
	byValue := make(map[int][]models.Card)
	for _, c := range cards {
		byValue[c.Value()] = append(byValue[c.Value()], c)
	}
	groups := make([][]models.Card, 0, len(byValue))
	for _, g := range byValue {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return groups[i][0].Value() > groups[j][0].Value()
	})
	return groups
}

// kickers returns up to n highest cards whose value is not excluded.
func kickers(cards []models.Card, n int, exclude ...int) []models.Card {
	out := make([]models.Card, 0, n)
	for _, c := range cards {
		if len(out) == n {
			break
		}
		skip := false
		for _, v := range exclude {
			if c.Value() == v {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, c)
		}
	}
	return out
}

func makeEval(rank HandRank, cards []models.Card, tiebreak ...int) HandEvaluation {
	key := StrengthKey{Rank: rank}
	copy(key.Tiebreak[:], tiebreak)
	return HandEvaluation{Key: key, Cards: cards}
}

func valuesOf(cards []models.Card) []int {
	vals := make([]int, len(cards))
	for i, c := range cards {
		vals[i] = c.Value()
	}
	return vals
}

func checkStraightFlush(cards []models.Card) (HandEvaluation, bool) {
	bySuit := make(map[models.Suit][]models.Card)
	for _, c := range cards {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}
	for _, suited := range bySuit {
		if len(suited) < 5 {
			continue
		}
		if straight, top := findStraight(suited); straight != nil {
			if top == 14 {
				return makeEval(RoyalFlush, straight, top), true
			}
			return makeEval(StraightFlush, straight, top), true
		}
	}
	return HandEvaluation{}, false
}

func checkFourOfAKind(cards []models.Card) (HandEvaluation, bool) {
	groups := rankGroups(cards)
	if len(groups[0]) < 4 {
		return HandEvaluation{}, false
	}
	quad := groups[0][:4]
	kicker := kickers(cards, 1, quad[0].Value())
	best := append(append([]models.Card{}, quad...), kicker...)
	return makeEval(FourOfAKind, best, quad[0].Value(), kicker[0].Value()), true
}

func checkFullHouse(cards []models.Card) (HandEvaluation, bool) {
	groups := rankGroups(cards)
	if len(groups) < 2 || len(groups[0]) < 3 || len(groups[1]) < 2 {
		return HandEvaluation{}, false
	}
	trips := groups[0][:3]
	pair := groups[1][:2]
	best := append(append([]models.Card{}, trips...), pair...)
	return makeEval(FullHouse, best, trips[0].Value(), pair[0].Value()), true
}

func checkFlush(cards []models.Card) (HandEvaluation, bool) {
	bySuit := make(map[models.Suit][]models.Card)
	for _, c := range cards {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}
	for _, suited := range bySuit {
		if len(suited) >= 5 {
			// cards arrive sorted, so the suited slice is too
			best := suited[:5]
			return makeEval(Flush, best, valuesOf(best)...), true
		}
	}
	return HandEvaluation{}, false
}

func checkStraight(cards []models.Card) (HandEvaluation, bool) {
	if straight, top := findStraight(cards); straight != nil {
		return makeEval(Straight, straight, top), true
	}
	return HandEvaluation{}, false
}

// findStraight returns the highest five-card run in value-descending cards
// and its top value. The ace also plays low, so the wheel tops out at 5.
func findStraight(cards []models.Card) ([]models.Card, int) {
	byValue := make(map[int]models.Card)
	for _, c := range cards {
		if _, ok := byValue[c.Value()]; !ok {
			byValue[c.Value()] = c
		}
	}
	if ace, ok := byValue[14]; ok {
		byValue[1] = ace
	}
	for top := 14; top >= 5; top-- {
		run := make([]models.Card, 0, 5)
		for v := top; v > top-5; v-- {
			c, ok := byValue[v]
			if !ok {
				break
			}
			run = append(run, c)
		}
		if len(run) == 5 {
			return run, top
		}
	}
	return nil, 0
}

func checkThreeOfAKind(cards []models.Card) (HandEvaluation, bool) {
	groups := rankGroups(cards)
	if len(groups[0]) < 3 {
		return HandEvaluation{}, false
	}
	trips := groups[0][:3]
	kick := kickers(cards, 2, trips[0].Value())
	best := append(append([]models.Card{}, trips...), kick...)
	return makeEval(ThreeOfAKind, best, append([]int{trips[0].Value()}, valuesOf(kick)...)...), true
}

func checkTwoPair(cards []models.Card) (HandEvaluation, bool) {
	groups := rankGroups(cards)
	if len(groups) < 2 || len(groups[0]) < 2 || len(groups[1]) < 2 {
		return HandEvaluation{}, false
	}
	high, low := groups[0][:2], groups[1][:2]
	kick := kickers(cards, 1, high[0].Value(), low[0].Value())
	best := append(append(append([]models.Card{}, high...), low...), kick...)
	return makeEval(TwoPair, best, high[0].Value(), low[0].Value(), kick[0].Value()), true
}

func checkOnePair(cards []models.Card) (HandEvaluation, bool) {
	groups := rankGroups(cards)
	if len(groups[0]) < 2 {
		return HandEvaluation{}, false
	}
	pair := groups[0][:2]
	kick := kickers(cards, 3, pair[0].Value())
	best := append(append([]models.Card{}, pair...), kick...)
	return makeEval(OnePair, best, append([]int{pair[0].Value()}, valuesOf(kick)...)...), true
}

func checkHighCard(cards []models.Card) HandEvaluation {
	best := cards[:5]
	return makeEval(HighCard, best, valuesOf(best)...)
}
