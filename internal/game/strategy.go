package game

import "strconv"

type Action string

const (
	None      Action = ""
	Hit       Action = "Hit"
	Stand     Action = "Stand"
	Double    Action = "Double"
	Split     Action = "Split"
	Surrender Action = "Surrender"
)

// Text returns the label shown to the player
func (a Action) Text() string {
	if a == None {
		return "-"
	}
	return string(a)
}

type KeyKind int

const (
	HardKey KeyKind = iota
	SoftKey
	PairKey
)

// PlayerKey identifies a strategy row: a hard total, a soft total written as
// the ace plus the remaining pips, or a pair of identical ranks.
type PlayerKey struct {
	Kind  KeyKind
	Value int // hard total, pips beside the soft ace, or the paired card value
}

func (k PlayerKey) String() string {
	switch k.Kind {
	case SoftKey:
		return "A" + strconv.Itoa(k.Value)
	case PairKey:
		c := pairCode(k.Value)
		return c + c
	default:
		return strconv.Itoa(k.Value)
	}
}

func pairCode(value int) string {
	switch value {
	case 11:
		return "A"
	case 10:
		return "T"
	default:
		return strconv.Itoa(value)
	}
}

// Entry is one cell of the strategy table. Fallback is what to do when Action
// is not available: a refused double always hits, a surrender hits, and a split
// plays the pair as an ordinary total.
type Entry struct {
	Action   Action `json:"action"`
	Fallback Action `json:"fallback"`
}

// Advice is a resolved recommendation for a concrete deal.
type Advice struct {
	Key    PlayerKey
	Upcard int
	Entry
}

const (
	minUpcard = 2
	maxUpcard = 11
)

// strategyTable is filled once from the rule functions below and never written again.
type strategyTable struct {
	hard [22][maxUpcard + 1]Entry // hard 4..21
	soft [11][maxUpcard + 1]Entry // ace plus 1..10 pips
	pair [12][maxUpcard + 1]Entry // paired card value 2..11
}

var strategy = buildStrategy()

func buildStrategy() *strategyTable {
	t := &strategyTable{}
	for up := minUpcard; up <= maxUpcard; up++ {
		for total := 4; total <= 21; total++ {
			t.hard[total][up] = hardEntry(total, up)
		}
		for pips := 1; pips <= 10; pips++ {
			t.soft[pips][up] = softEntry(pips, up)
		}
		for v := 2; v <= 11; v++ {
			t.pair[v][up] = pairEntry(v, up)
		}
	}
	return t
}

func between(up, lo, hi int) bool { return up >= lo && up <= hi }

func hardEntry(total, up int) Entry {
	hit := Entry{Action: Hit, Fallback: Hit}
	stand := Entry{Action: Stand, Fallback: Stand}
	double := Entry{Action: Double, Fallback: Hit}
	surrender := Entry{Action: Surrender, Fallback: Hit}

	switch {
	case total <= 8:
		return hit
	case total == 9:
		if between(up, 3, 6) {
			return double
		}
		return hit
	case total == 10:
		if up <= 9 {
			return double
		}
		return hit
	case total == 11:
		return double
	case total == 12:
		if between(up, 4, 6) {
			return stand
		}
		return hit
	case total == 13, total == 14:
		if between(up, 2, 6) {
			return stand
		}
		return hit
	case total == 15:
		if between(up, 2, 6) {
			return stand
		}
		if up == 10 {
			return surrender
		}
		return hit
	case total == 16:
		if between(up, 2, 6) {
			return stand
		}
		if up >= 9 {
			return surrender
		}
		return hit
	default:
		return stand
	}
}

func softEntry(pips, up int) Entry {
	hit := Entry{Action: Hit, Fallback: Hit}
	stand := Entry{Action: Stand, Fallback: Stand}

	switch {
	case pips <= 1:
		return hit
	case pips <= 3:
		if between(up, 5, 6) {
			return Entry{Action: Double, Fallback: Hit}
		}
		return hit
	case pips <= 5:
		if between(up, 4, 6) {
			return Entry{Action: Double, Fallback: Hit}
		}
		return hit
	case pips == 6:
		if between(up, 3, 6) {
			return Entry{Action: Double, Fallback: Hit}
		}
		return hit
	case pips == 7:
		if between(up, 3, 6) {
			return Entry{Action: Double, Fallback: Hit}
		}
		if up <= 8 {
			return stand
		}
		return hit
	default:
		return stand
	}
}

func pairEntry(value, up int) Entry {
	// Fives are played as a hard ten and tens as a hard twenty.
	if value == 5 || value == 10 {
		return hardEntry(value*2, up)
	}

	var split bool
	switch value {
	case 2, 3, 7:
		split = up <= 7
	case 4:
		split = between(up, 5, 6)
	case 6:
		split = up <= 6
	case 8, 11:
		split = true
	case 9:
		split = up != 7 && up <= 9
	}

	unsplit := unsplitEntry(value, up)
	if !split {
		return unsplit
	}
	return Entry{Action: Split, Fallback: unsplit.Action}
}

// unsplitEntry is the entry for a pair played as an ordinary total, reduced to
// an action that is always available.
func unsplitEntry(value, up int) Entry {
	var e Entry
	if value == 11 {
		e = softEntry(1, up)
	} else {
		e = hardEntry(value*2, up)
	}
	if e.Action == Surrender {
		e.Action = e.Fallback
	}
	return e
}

// KeyFor returns the strategy row for a hand. Pair keys only apply to exactly
// two cards; past that the hand is looked up by its soft or hard total.
func KeyFor(h Hand) PlayerKey {
	if h.IsPair() {
		return PlayerKey{Kind: PairKey, Value: h[0].GetValue()}
	}
	c := h.Classify()
	if c.Soft {
		return PlayerKey{Kind: SoftKey, Value: c.Total - 11}
	}
	return PlayerKey{Kind: HardKey, Value: c.Total}
}

// Lookup returns the table entry for a key against a dealer upcard value.
func Lookup(key PlayerKey, upcard int) (Entry, bool) {
	if upcard < minUpcard || upcard > maxUpcard {
		return Entry{}, false
	}
	switch key.Kind {
	case PairKey:
		if key.Value >= 2 && key.Value <= 11 {
			return strategy.pair[key.Value][upcard], true
		}
	case SoftKey:
		if key.Value >= 1 && key.Value <= 10 {
			return strategy.soft[key.Value][upcard], true
		}
	case HardKey:
		if key.Value >= 4 && key.Value <= 21 {
			return strategy.hard[key.Value][upcard], true
		}
	}
	return Entry{}, false
}

// Upcard returns the value of the dealer's face-up card for strategy purposes.
// The first dealer card is the hole card, so the upcard is the second one.
func Upcard(dealer Hand) (int, bool) {
	if len(dealer) < 2 {
		return 0, false
	}
	return dealer[1].GetValue(), true
}

// Advise resolves the full recommendation for the current hands. The zero
// Advice (Action None) is returned when there is nothing to advise.
func Advise(player, dealer Hand) Advice {
	up, ok := Upcard(dealer)
	if !ok || len(player) < 2 || player.IsBust() {
		return Advice{}
	}
	key := KeyFor(player)
	entry, ok := Lookup(key, up)
	if !ok {
		return Advice{}
	}
	return Advice{Key: key, Upcard: up, Entry: entry}
}

// Recommend returns the basic strategy action for the hands.
func Recommend(player, dealer Hand) Action {
	return Advise(player, dealer).Action
}

// ChartRow is one printable line of the strategy chart.
type ChartRow struct {
	Key     string   `json:"key"`
	Actions []Action `json:"actions"` // upcards 2 through ace
}

// Chart lists hard 5-21, soft A2-A9 and every pair against upcards 2-11.
func Chart() []ChartRow {
	var rows []ChartRow
	add := func(k PlayerKey) {
		row := ChartRow{Key: k.String()}
		for up := minUpcard; up <= maxUpcard; up++ {
			e, _ := Lookup(k, up)
			row.Actions = append(row.Actions, e.Action)
		}
		rows = append(rows, row)
	}
	for total := 5; total <= 21; total++ {
		add(PlayerKey{Kind: HardKey, Value: total})
	}
	for pips := 2; pips <= 9; pips++ {
		add(PlayerKey{Kind: SoftKey, Value: pips})
	}
	for v := 2; v <= 11; v++ {
		add(PlayerKey{Kind: PairKey, Value: v})
	}
	return rows
}
