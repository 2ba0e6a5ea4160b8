package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBettingConservesChips(t *testing.T) {
	r := NewRound(stackedShoe(), 1000)

	assert.True(t, r.PlaceBet(10))
	assert.True(t, r.PlaceBet(50))
	assert.True(t, r.PlaceBet(100))
	assert.Equal(t, 160, r.Bet())
	assert.Equal(t, 840, r.Chips())

	assert.False(t, r.PlaceBet(5000), "bet above the stack is ignored")
	assert.False(t, r.PlaceBet(0))
	assert.False(t, r.PlaceBet(-10))
	assert.Equal(t, 1000, r.Chips()+r.Bet())

	assert.True(t, r.ClearBet())
	assert.Equal(t, 0, r.Bet())
	assert.Equal(t, 1000, r.Chips())
}

func TestDealRequiresBet(t *testing.T) {
	r := NewRound(stackedShoe("10", "9", "K", "Q"), 1000)
	assert.False(t, r.Deal())
	assert.Equal(t, Betting, r.Phase())
	assert.Empty(t, r.PlayerHand())

	require.True(t, r.PlaceBet(100))
	require.True(t, r.Deal())
	assert.Equal(t, Playing, r.Phase())
	assert.Equal(t, hand("10", "9"), r.PlayerHand())
	assert.Equal(t, hand("K", "Q"), r.DealerHand())
	assert.Equal(t, 1000, r.Chips()+r.Bet())
}

func TestActionsOutOfStateAreIgnored(t *testing.T) {
	r := NewRound(stackedShoe(), 1000)
	assert.False(t, r.Hit())
	assert.False(t, r.Stand())
	assert.False(t, r.Double())

	r = dealtRound(t, 1000, 100, "10", "9", "K", "Q")
	assert.False(t, r.PlaceBet(10))
	assert.False(t, r.ClearBet())
	assert.False(t, r.Deal())
	assert.Equal(t, 100, r.Bet())
	assert.Equal(t, 900, r.Chips())
}

func TestStandSettlement(t *testing.T) {
	tests := []struct {
		name      string
		cards     []string
		outcome   Outcome
		chips     int
		message   string
		dealerLen int
	}{
		{
			name:      "dealer busts at 24",
			cards:     []string{"10", "9", "10", "6", "8"},
			outcome:   Win,
			chips:     1100,
			message:   "Dealer Bust, Player Wins!",
			dealerLen: 3,
		},
		{
			name:      "equal totals push",
			cards:     []string{"10", "8", "K", "8"},
			outcome:   Push,
			chips:     1000,
			message:   "Push!",
			dealerLen: 2,
		},
		{
			name:      "dealer 20 beats player 19",
			cards:     []string{"10", "9", "K", "Q"},
			outcome:   Lose,
			chips:     900,
			message:   "Dealer Wins!",
			dealerLen: 2,
		},
		{
			name:      "player 20 beats dealer 18",
			cards:     []string{"K", "Q", "10", "8"},
			outcome:   Win,
			chips:     1100,
			message:   "Player Wins!",
			dealerLen: 2,
		},
		{
			name:      "dealer stands on soft 17",
			cards:     []string{"10", "7", "A", "6"},
			outcome:   Push,
			chips:     1000,
			message:   "Push!",
			dealerLen: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := dealtRound(t, 1000, 100, tt.cards...)
			require.True(t, r.Stand())

			assert.Equal(t, Betting, r.Phase())
			assert.Equal(t, 0, r.Bet())
			assert.Equal(t, tt.chips, r.Chips())
			assert.Equal(t, tt.message, r.Message())
			assert.Len(t, r.DealerHand(), tt.dealerLen)

			s, ok := r.LastSettlement()
			require.True(t, ok)
			assert.Equal(t, tt.outcome, s.Outcome)
			assert.Equal(t, 100, s.Bet)
			assert.Equal(t, 1, s.Round)
			assert.Equal(t, tt.chips, s.ChipsAfter)
		})
	}
}

func TestHitBustSettlesImmediately(t *testing.T) {
	r := dealtRound(t, 1000, 100, "10", "6", "K", "7", "9")
	require.True(t, r.Hit())

	assert.Equal(t, Betting, r.Phase())
	assert.Equal(t, "Player Bust!", r.Message())
	assert.Equal(t, 900, r.Chips())
	assert.Equal(t, 0, r.Bet())
	assert.Equal(t, None, r.Recommended())
	assert.Len(t, r.DealerHand(), 2, "dealer does not draw after a player bust")

	s, ok := r.LastSettlement()
	require.True(t, ok)
	assert.Equal(t, Lose, s.Outcome)
	assert.Equal(t, 0, s.Payout)
	assert.Equal(t, 25, s.PlayerValue)
}

func TestHitRecomputesRecommendation(t *testing.T) {
	r := dealtRound(t, 1000, 100, "8", "8", "2", "10", "2")
	assert.Equal(t, Split, r.Recommended())

	require.True(t, r.Hit())
	assert.Equal(t, Playing, r.Phase())
	// 8+8+2 is no longer a pair: hard 18 stands
	assert.Equal(t, Stand, r.Recommended())
	assert.Equal(t, "18", r.Advice().Key.String())
}

func TestDoubleWin(t *testing.T) {
	r := dealtRound(t, 1000, 100, "5", "6", "10", "7", "10")
	require.True(t, r.Double())

	assert.Equal(t, Betting, r.Phase())
	assert.Len(t, r.PlayerHand(), 3)
	assert.Equal(t, 1200, r.Chips())
	assert.Equal(t, 0, r.Bet())

	s, _ := r.LastSettlement()
	assert.Equal(t, 200, s.Bet)
	assert.Equal(t, 400, s.Payout)
}

func TestDoubleBust(t *testing.T) {
	r := dealtRound(t, 1000, 100, "10", "6", "10", "7", "K")
	require.True(t, r.Double())

	assert.Equal(t, "Player Bust!", r.Message())
	assert.Equal(t, 800, r.Chips())
	assert.Len(t, r.DealerHand(), 2)
	assert.Equal(t, 1, r.RoundsPlayed(), "settled exactly once")
}

func TestDoublePreconditions(t *testing.T) {
	t.Run("three cards", func(t *testing.T) {
		r := dealtRound(t, 1000, 100, "2", "3", "10", "7", "4")
		require.True(t, r.Hit())
		before := *r

		assert.False(t, r.Double())
		assert.Equal(t, before.chips, r.Chips())
		assert.Equal(t, before.bet, r.Bet())
		assert.Len(t, r.PlayerHand(), 3)
		assert.Equal(t, Playing, r.Phase())
	})

	t.Run("not enough chips", func(t *testing.T) {
		r := dealtRound(t, 1000, 600, "5", "6", "10", "7", "10")
		assert.False(t, r.CanDouble())
		assert.False(t, r.Double())
		assert.Equal(t, 400, r.Chips())
		assert.Equal(t, 600, r.Bet())
		assert.Len(t, r.PlayerHand(), 2)
	})

	t.Run("exactly enough chips", func(t *testing.T) {
		r := dealtRound(t, 1000, 500, "5", "6", "10", "7", "10")
		assert.True(t, r.Double())
		assert.Equal(t, 2000, r.Chips())
	})
}

func TestChipsPersistAcrossRounds(t *testing.T) {
	r := dealtRound(t, 1000, 100, "10", "9", "K", "Q", "10", "9", "10", "6", "8")
	require.True(t, r.Stand())
	assert.Equal(t, 900, r.Chips())

	require.True(t, r.PlaceBet(100))
	require.True(t, r.Deal())
	assert.Equal(t, hand("10", "9"), r.PlayerHand(), "hands are replaced, not appended")
	require.True(t, r.Stand())
	assert.Equal(t, 1000, r.Chips())
	assert.Equal(t, 2, r.RoundsPlayed())
}
