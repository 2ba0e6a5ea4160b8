package game

import "time"

// CardView is a card as the player may see it. Hidden cards carry no rank or suit.
type CardView struct {
	Rank   Rank `json:"rank,omitempty"`
	Suit   Suit `json:"suit,omitempty"`
	Red    bool `json:"red,omitempty"`
	Hidden bool `json:"hidden,omitempty"`
}

// Controls lists which actions are currently available.
type Controls struct {
	Bet      bool `json:"bet"`
	Clear    bool `json:"clear"`
	Deal     bool `json:"deal"`
	Hit      bool `json:"hit"`
	Stand    bool `json:"stand"`
	Double   bool `json:"double"`
	Autoplay bool `json:"autoplay"`
}

// Snapshot is everything a presentation layer needs to draw the table.
type Snapshot struct {
	ID            string        `json:"id"`
	Phase         Phase         `json:"phase"`
	Chips         int           `json:"chips"`
	Bet           int           `json:"bet"`
	PlayerHand    []CardView    `json:"playerHand"`
	PlayerValue   int           `json:"playerValue"`
	DealerHand    []CardView    `json:"dealerHand"`
	DealerValue   *int          `json:"dealerValue"` // nil while the hole card is down
	Message       string        `json:"message"`
	Recommended   string        `json:"recommended"`
	Fallback      string        `json:"fallback,omitempty"`
	StrategyKey   string        `json:"strategyKey,omitempty"`
	Autoplay      AutoplayState `json:"autoplay"`
	Controls      Controls      `json:"controls"`
	Denominations []int         `json:"denominations"`
	ShoeRemaining int           `json:"shoeRemaining"`
	RoundsPlayed  int           `json:"roundsPlayed"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// State returns the current snapshot. The dealer's hole card and total stay
// hidden while a hand is in progress.
func (g *BlackjackGame) State() Snapshot {
	r := g.Round
	playing := !r.Over()

	s := Snapshot{
		ID:            g.ID,
		Phase:         r.Phase(),
		Chips:         r.Chips(),
		Bet:           r.Bet(),
		PlayerValue:   r.player.Value(),
		Message:       r.Message(),
		Autoplay:      g.Autoplay.State(),
		Denominations: ChipDenominations,
		ShoeRemaining: r.ShoeRemaining(),
		RoundsPlayed:  r.RoundsPlayed(),
		UpdatedAt:     g.UpdatedAt,
	}

	s.PlayerHand = make([]CardView, 0, len(r.player))
	for _, c := range r.player {
		s.PlayerHand = append(s.PlayerHand, viewOf(c))
	}

	s.DealerHand = make([]CardView, 0, len(r.dealer))
	for i, c := range r.dealer {
		if i == 0 && playing {
			s.DealerHand = append(s.DealerHand, CardView{Hidden: true})
			continue
		}
		s.DealerHand = append(s.DealerHand, viewOf(c))
	}
	if !playing {
		v := r.dealer.Value()
		s.DealerValue = &v
	}

	advice := r.Advice()
	s.Recommended = advice.Action.Text()
	if advice.Action != None {
		s.StrategyKey = advice.Key.String()
		if advice.Fallback != advice.Action {
			s.Fallback = advice.Fallback.Text()
		}
	}

	autoActive := g.Autoplay.State().Active
	s.Controls = Controls{
		Bet:      !autoActive && r.CanBet(1),
		Clear:    !autoActive && r.CanClear(),
		Deal:     !autoActive && r.CanDeal(),
		Hit:      !autoActive && r.CanHit(),
		Stand:    !autoActive && r.CanStand(),
		Double:   !autoActive && r.CanDouble(),
		Autoplay: r.Over(),
	}
	return s
}

func viewOf(c Card) CardView {
	return CardView{Rank: c.Rank, Suit: c.Suit, Red: c.IsRed()}
}
