package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/calvinwijaya/blackjack-advisor/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := NewDatabase(filepath.Join(t.TempDir(), "rounds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func settlement(round int, outcome game.Outcome, bet, payout int) game.Settlement {
	return game.Settlement{
		Round:       round,
		Outcome:     outcome,
		Bet:         bet,
		Payout:      payout,
		PlayerValue: 19,
		DealerValue: 20,
		PlayerHand:  game.Hand{{Suit: game.Hearts, Rank: game.Ten}, {Suit: game.Clubs, Rank: game.Nine}},
		DealerHand:  game.Hand{{Suit: game.Spades, Rank: game.King}, {Suit: game.Diamonds, Rank: game.Queen}},
		Message:     "Dealer Wins!",
		ChipsAfter:  1000 - bet + payout,
	}
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "postgres", driverFor("postgres://user:pw@localhost:5432/blackjack?sslmode=disable"))
	assert.Equal(t, "postgres", driverFor("postgresql://localhost/blackjack"))
	assert.Equal(t, "sqlite3", driverFor("./data/blackjack.db"))

	assert.True(t, IsSQLite("blackjack.db"))
	assert.False(t, IsSQLite("postgres://localhost/blackjack"))
}

func TestRecordAndListRounds(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.RecordRound(ctx, "g1", settlement(1, game.Lose, 100, 0)))
	require.NoError(t, d.RecordRound(ctx, "g1", settlement(2, game.Win, 100, 200)))
	require.NoError(t, d.RecordRound(ctx, "g2", settlement(1, game.Push, 50, 50)))

	rounds, err := d.ListRounds(ctx, "g1", 10)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, 2, rounds[0].Round, "newest first")
	assert.Equal(t, game.Win, rounds[0].Outcome)
	assert.Equal(t, game.King, rounds[0].DealerHand[0].Rank)
	assert.Equal(t, game.Hearts, rounds[0].PlayerHand[0].Suit)
	assert.False(t, rounds[0].CreatedAt.IsZero())

	rounds, err = d.ListRounds(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Len(t, rounds, 1)

	rounds, err = d.ListRounds(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, rounds)
}

func TestGetGameStats(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.RecordRound(ctx, "g1", settlement(1, game.Lose, 100, 0)))
	require.NoError(t, d.RecordRound(ctx, "g1", settlement(2, game.Win, 100, 200)))
	require.NoError(t, d.RecordRound(ctx, "g1", settlement(3, game.Push, 100, 100)))
	require.NoError(t, d.RecordRound(ctx, "g1", settlement(4, game.Win, 200, 400)))

	stats, err := d.GetGameStats(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.RoundsPlayed)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Pushes)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 500, stats.TotalBets)
	assert.Equal(t, 700, stats.TotalPayout)
	assert.Equal(t, 200, stats.Net)
	assert.InDelta(t, 0.5, stats.WinRate, 1e-9)

	empty, err := d.GetGameStats(ctx, "none")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.RoundsPlayed)
	assert.Zero(t, empty.WinRate)
}
