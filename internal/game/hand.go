package game

import "strings"

// Hand is an ordered set of cards held by the player or the dealer.
type Hand []Card

// Classification is the strategy-facing view of a hand.
type Classification struct {
	Total int  `json:"total"`
	Soft  bool `json:"soft"` // at least one ace still counted as 11
}

// Value returns the best total of the hand: the highest total not over 21 when
// aces allow it, otherwise the minimum bust total.
func (h Hand) Value() int {
	return h.Classify().Total
}

// Classify computes the total and whether it is soft
func (h Hand) Classify() Classification {
	total := 0
	aces := 0

	// First pass: every ace counts 11
	for _, card := range h {
		if card.Rank == Ace {
			aces++
		}
		total += card.GetValue()
	}

	// Second pass: convert aces from 11 to 1 as needed to avoid busting
	for aces > 0 && total > 21 {
		total -= 10
		aces--
	}

	return Classification{Total: total, Soft: aces > 0}
}

// IsPair reports whether the hand is exactly two cards of identical rank.
func (h Hand) IsPair() bool {
	return len(h) == 2 && h[0].Rank == h[1].Rank
}

func (h Hand) IsBust() bool {
	return h.Value() > 21
}

func (h Hand) clone() Hand {
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// String lists the cards, e.g. "A♠ 10♥".
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
