package game

import (
	"math/rand"
	"testing"
)

// hand builds spade cards from rank labels.
func hand(labels ...string) Hand {
	h := make(Hand, 0, len(labels))
	for _, l := range labels {
		h = append(h, Card{Suit: Spades, Rank: Rank(l)})
	}
	return h
}

// stackedShoe deals the given ranks in order before falling back to a seeded reshuffle.
func stackedShoe(labels ...string) *Shoe {
	return &Shoe{cards: hand(labels...), rng: rand.New(rand.NewSource(7))}
}

// dealtRound places bet and deals from a stacked shoe: player gets the first
// two cards, the dealer the next two (hole card first).
func dealtRound(t *testing.T, chips, bet int, labels ...string) *Round {
	t.Helper()
	r := NewRound(stackedShoe(labels...), chips)
	if !r.PlaceBet(bet) {
		t.Fatalf("PlaceBet(%d) with %d chips was ignored", bet, chips)
	}
	if !r.Deal() {
		t.Fatal("Deal was ignored")
	}
	return r
}
