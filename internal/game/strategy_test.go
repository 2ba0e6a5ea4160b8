package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendKnownCells(t *testing.T) {
	tests := []struct {
		name     string
		player   Hand
		dealer   Hand // hole card first, upcard second
		want     Action
		fallback Action
	}{
		{"hard 16 vs ten surrenders", hand("10", "6"), hand("2", "K"), Surrender, Hit},
		{"hard 16 vs six stands", hand("9", "7"), hand("2", "6"), Stand, Stand},
		{"hard 15 vs ten surrenders", hand("9", "6"), hand("2", "10"), Surrender, Hit},
		{"hard 15 vs nine hits", hand("9", "6"), hand("2", "9"), Hit, Hit},
		{"hard 11 vs ace doubles", hand("5", "6"), hand("2", "A"), Double, Hit},
		{"hard 12 vs three hits", hand("10", "2"), hand("2", "3"), Hit, Hit},
		{"pair of eights vs ten splits", hand("8", "8"), hand("2", "10"), Split, Hit},
		{"pair of eights vs six splits", hand("8", "8"), hand("2", "6"), Split, Stand},
		{"soft 18 vs six doubles", hand("A", "7"), hand("2", "6"), Double, Hit},
		{"soft 18 vs nine hits", hand("A", "7"), hand("2", "9"), Hit, Hit},
		{"soft 18 vs two stands", hand("7", "A"), hand("2", "2"), Stand, Stand},
		{"fives double like a ten", hand("5", "5"), hand("2", "9"), Double, Hit},
		{"fives never split", hand("5", "5"), hand("2", "10"), Hit, Hit},
		{"tens stand", hand("K", "K"), hand("2", "6"), Stand, Stand},
		{"nines stand against seven", hand("9", "9"), hand("2", "7"), Stand, Stand},
		{"aces split", hand("A", "A"), hand("2", "A"), Split, Hit},
		{"mixed tens are a hard 20", hand("J", "Q"), hand("2", "6"), Stand, Stand},
		{"three card soft 17 doubles vs three", hand("A", "2", "4"), hand("2", "3"), Double, Hit},
		{"three card hard 16 vs ten", hand("4", "5", "7"), hand("2", "10"), Surrender, Hit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice := Advise(tt.player, tt.dealer)
			assert.Equal(t, tt.want, advice.Action)
			assert.Equal(t, tt.fallback, advice.Fallback)
			assert.Equal(t, tt.want, Recommend(tt.player, tt.dealer))
		})
	}
}

func TestHardElevenDoublesAgainstEveryUpcard(t *testing.T) {
	for up := minUpcard; up <= maxUpcard; up++ {
		e, ok := Lookup(PlayerKey{Kind: HardKey, Value: 11}, up)
		require.True(t, ok)
		assert.Equal(t, Double, e.Action, "upcard %d", up)
	}
}

func TestPairOfEightsSplitsAgainstEveryUpcard(t *testing.T) {
	for up := minUpcard; up <= maxUpcard; up++ {
		e, ok := Lookup(PlayerKey{Kind: PairKey, Value: 8}, up)
		require.True(t, ok)
		assert.Equal(t, Split, e.Action, "upcard %d", up)
	}
}

func TestStrategyTableIsTotal(t *testing.T) {
	var keys []PlayerKey
	for total := 5; total <= 21; total++ {
		keys = append(keys, PlayerKey{Kind: HardKey, Value: total})
	}
	for pips := 2; pips <= 9; pips++ {
		keys = append(keys, PlayerKey{Kind: SoftKey, Value: pips})
	}
	for v := 2; v <= 11; v++ {
		keys = append(keys, PlayerKey{Kind: PairKey, Value: v})
	}

	for _, k := range keys {
		for up := minUpcard; up <= maxUpcard; up++ {
			e, ok := Lookup(k, up)
			require.True(t, ok, "%s vs %d missing", k, up)
			assert.NotEqual(t, None, e.Action, "%s vs %d", k, up)
			assert.Contains(t, []Action{Hit, Stand}, e.Fallback, "%s vs %d fallback must always be playable", k, up)
		}
	}
}

func TestLookupOutsideDomain(t *testing.T) {
	_, ok := Lookup(PlayerKey{Kind: HardKey, Value: 16}, 1)
	assert.False(t, ok)
	_, ok = Lookup(PlayerKey{Kind: HardKey, Value: 22}, 10)
	assert.False(t, ok)
	_, ok = Lookup(PlayerKey{Kind: PairKey, Value: 1}, 10)
	assert.False(t, ok)
}

func TestRecommendNeedsTwoCardsEach(t *testing.T) {
	assert.Equal(t, None, Recommend(hand("10"), hand("2", "6")))
	assert.Equal(t, None, Recommend(hand("10", "6"), hand("6")))
	assert.Equal(t, None, Recommend(hand("10", "6", "K"), hand("2", "6")), "bust hands get no advice")
}

func TestUpcardIsSecondDealerCard(t *testing.T) {
	up, ok := Upcard(hand("K", "A"))
	require.True(t, ok)
	assert.Equal(t, 11, up)

	up, ok = Upcard(hand("A", "Q"))
	require.True(t, ok)
	assert.Equal(t, 10, up)
}

func TestKeyStrings(t *testing.T) {
	assert.Equal(t, "16", KeyFor(hand("10", "6")).String())
	assert.Equal(t, "A7", KeyFor(hand("A", "7")).String())
	assert.Equal(t, "88", KeyFor(hand("8", "8")).String())
	assert.Equal(t, "TT", KeyFor(hand("J", "J")).String())
	assert.Equal(t, "AA", KeyFor(hand("A", "A")).String())
	assert.Equal(t, "A5", KeyFor(hand("A", "2", "3")).String())
}

func TestChartShape(t *testing.T) {
	rows := Chart()
	require.Len(t, rows, 17+8+10)
	for _, row := range rows {
		assert.Len(t, row.Actions, 10, row.Key)
	}
	assert.Equal(t, "5", rows[0].Key)
	assert.Equal(t, "AA", rows[len(rows)-1].Key)
}
