package game

import (
	"math/rand"
	"time"
)

// Shoe is the card source a session deals from. It is built once per session
// and only reshuffled when it runs dry.
type Shoe struct {
	cards []Card
	rng   *rand.Rand
}

// NewShoe creates a shuffled 52-card shoe. A nil rng seeds one from the clock.
func NewShoe(rng *rand.Rand) *Shoe {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Shoe{rng: rng}
	s.Reset()
	return s
}

// Reset replaces the contents with a fresh standard deck in random order
func (s *Shoe) Reset() {
	s.cards = make([]Card, 0, len(suits)*len(ranks))
	for _, suit := range suits {
		for _, rank := range ranks {
			s.cards = append(s.cards, Card{Suit: suit, Rank: rank})
		}
	}

	// Fisher-Yates shuffle algorithm
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Deal removes and returns the top card. An empty shoe is reshuffled first,
// so Deal never fails.
func (s *Shoe) Deal() Card {
	if len(s.cards) == 0 {
		s.Reset()
	}

	card := s.cards[0]
	s.cards = s.cards[1:]
	return card
}

// Remaining returns the number of cards left before the next reshuffle
func (s *Shoe) Remaining() int {
	return len(s.cards)
}
