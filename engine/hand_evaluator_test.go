package engine

import (
	"testing"

	"github.com/paulhankin/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"poker-platform/models"
)

func mustEval(t *testing.T, cards string) HandEvaluation {
	t.Helper()
	ev, err := Evaluate(models.MustParseCards(cards))
	require.NoError(t, err)
	return ev
}

func TestEvaluate_Categories(t *testing.T) {
	tests := []struct {
		name  string
		cards string
		want  HandRank
	}{
		{"high card", "Ah Kd 9c 7s 4h 3d 2c", HighCard},
		{"one pair", "Ah Ad 9c 7s 4h 3d 2c", OnePair},
		{"two pair", "Ah Ad 9c 9s 4h 3d 2c", TwoPair},
		{"three of a kind", "Ah Ad Ac 9s 4h 3d 2c", ThreeOfAKind},
		{"straight", "9h 8d 7c 6s 5h Kd 2c", Straight},
		{"wheel", "Ah 2d 3c 4s 5h Kd Qc", Straight},
		{"flush", "Ah Jh 9h 7h 4h 3d 2c", Flush},
		{"full house", "Ah Ad Ac 9s 9h 3d 2c", FullHouse},
		{"full house from two trips", "Ah Ad Ac 9s 9h 9d 2c", FullHouse},
		{"four of a kind", "Ah Ad Ac As 9h 3d 2c", FourOfAKind},
		{"straight flush", "9h 8h 7h 6h 5h Kd 2c", StraightFlush},
		{"steel wheel", "Ah 2h 3h 4h 5h Kd Qc", StraightFlush},
		{"royal flush", "Ah Kh Qh Jh Th 3d 2c", RoyalFlush},
		{"five cards only", "Ah Kh Qh Jh 9d", HighCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, tt.cards).Key.Rank)
		})
	}
}

func TestEvaluate_WheelIsLowestStraight(t *testing.T) {
	wheel := mustEval(t, "Ah 2d 3c 4s 5h Kd Qc")
	six := mustEval(t, "6h 2d 3c 4s 5h Kd Qc")

	assert.Equal(t, 5, wheel.Key.Tiebreak[0])
	assert.Equal(t, 1, six.Key.Compare(wheel.Key))
}

func TestEvaluate_KickersBreakTies(t *testing.T) {
	board := "Ah Ad 9c 7s 4h"
	kingKicker := mustEval(t, board+" Kc 2d")
	queenKicker := mustEval(t, board+" Qc 2d")

	assert.Equal(t, OnePair, kingKicker.Key.Rank)
	assert.Equal(t, 1, kingKicker.Key.Compare(queenKicker.Key))
	assert.Equal(t, -1, queenKicker.Key.Compare(kingKicker.Key))
}

func TestEvaluate_BoardPlaysIsATie(t *testing.T) {
	board := "Ah Kh Qh Jh Th"
	a := mustEval(t, board+" 2c 3d")
	b := mustEval(t, board+" 4c 5d")

	assert.Equal(t, 0, a.Key.Compare(b.Key))
}

func TestEvaluate_TwoPairUsesBestKicker(t *testing.T) {
	// Three pairs: the third pair's card is the kicker.
	ev := mustEval(t, "Ah Ad Kc Ks Qh Qd 2c")
	assert.Equal(t, TwoPair, ev.Key.Rank)
	assert.Equal(t, [5]int{14, 13, 12, 0, 0}, ev.Key.Tiebreak)
}

func TestEvaluate_RejectsTooFewCards(t *testing.T) {
	_, err := Evaluate(models.MustParseCards("Ah Kh Qh Jh"))
	assert.ErrorIs(t, err, ErrTooFewCards)
}

func toReference(t *rapid.T, cards []models.Card) [7]poker.Card {
	suits := map[models.Suit]poker.Suit{
		models.Clubs:    poker.Club,
		models.Diamonds: poker.Diamond,
		models.Hearts:   poker.Heart,
		models.Spades:   poker.Spade,
	}
	var out [7]poker.Card
	for i, c := range cards {
		rank := c.Value()
		if rank == 14 {
			rank = 1
		}
		pc, err := poker.MakeCard(suits[c.Suit], poker.Rank(rank))
		if err != nil {
			t.Fatalf("convert %s: %v", c, err)
		}
		out[i] = pc
	}
	return out
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// The ordering must agree with an independent evaluator on random pairs of
// seven-card hands.
func TestEvaluate_AgreesWithReferenceEvaluator(t *testing.T) {
	full := models.NewDeck(models.NewSeededRand(1)).Cards

	rapid.Check(t, func(t *rapid.T) {
		deck := rapid.Permutation(full).Draw(t, "deck")
		a, b := deck[:7], deck[7:14]

		evA, err := Evaluate(a)
		if err != nil {
			t.Fatal(err)
		}
		evB, err := Evaluate(b)
		if err != nil {
			t.Fatal(err)
		}

		refA, refB := toReference(t, a), toReference(t, b)
		want := sign(int(poker.Eval7(&refA)) - int(poker.Eval7(&refB)))
		if got := evA.Key.Compare(evB.Key); got != want {
			t.Fatalf("%v (%s) vs %v (%s): got %d, reference %d", a, evA.Key, b, evB.Key, got, want)
		}
	})
}
