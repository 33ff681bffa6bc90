package models

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

type Suit string
type Rank string

const (
	Hearts   Suit = "h"
	Diamonds Suit = "d"
	Clubs    Suit = "c"
	Spades   Suit = "s"
)

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "T"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

var (
	AllSuits = []Suit{Hearts, Diamonds, Clubs, Spades}
	AllRanks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
)

type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Value maps the rank to 2..14 with the ace high. Unknown ranks return 0.
func (c Card) Value() int {
	for i, r := range AllRanks {
		if r == c.Rank {
			return i + 2
		}
	}
	return 0
}

// ParseCard reads the two-character form produced by String, e.g. "Th" or "As".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	c := Card{Rank: Rank(s[:1]), Suit: Suit(s[1:])}
	if c.Value() == 0 {
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}
	switch c.Suit {
	case Hearts, Diamonds, Clubs, Spades:
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}
	return c, nil
}

// MustParseCards parses a space separated card list and panics on bad input.
// Intended for fixtures.
func MustParseCards(s string) []Card {
	var cards []Card
	for i := 0; i < len(s); {
		if s[i] == ' ' {
			i++
			continue
		}
		if i+2 > len(s) {
			panic(fmt.Sprintf("truncated card list %q", s))
		}
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			panic(err)
		}
		cards = append(cards, c)
		i += 2
	}
	return cards
}

// NewRand returns a ChaCha8 source seeded from the operating system.
func NewRand() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(fmt.Sprintf("seed deck rng: %v", err))
	}
	return rand.New(rand.NewChaCha8(seed))
}

// NewSeededRand is a deterministic source for replays and tests.
func NewSeededRand(seed uint64) *rand.Rand {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:8], seed)
	return rand.New(rand.NewChaCha8(s))
}

// Deck is the undealt remainder of a pack. It is persisted inside HandState.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck returns a full 52-card pack shuffled with rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{Cards: make([]Card, 0, 52)}
	for _, suit := range AllSuits {
		for _, rank := range AllRanks {
			d.Cards = append(d.Cards, Card{Rank: rank, Suit: suit})
		}
	}
	d.Shuffle(rng)
	return d
}

// Shuffle is a Fisher-Yates pass; every permutation is equally likely for a uniform rng.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

func (d *Deck) Deal() (Card, error) {
	if len(d.Cards) == 0 {
		return Card{}, fmt.Errorf("deck is empty - no more cards to deal")
	}
	card := d.Cards[0]
	d.Cards = d.Cards[1:]
	return card, nil
}

func (d *Deck) DealMultiple(n int) ([]Card, error) {
	if len(d.Cards) < n {
		return nil, fmt.Errorf("not enough cards in deck: requested %d, available %d", n, len(d.Cards))
	}
	cards := make([]Card, n)
	copy(cards, d.Cards[:n])
	d.Cards = d.Cards[n:]
	return cards, nil
}

func (d *Deck) CardsRemaining() int {
	return len(d.Cards)
}
