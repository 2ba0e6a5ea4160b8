package game

type Phase string

const (
	Betting Phase = "betting" // Between rounds, bets can be placed
	Playing Phase = "playing" // A hand is in progress
)

type Outcome string

const (
	Win  Outcome = "win"
	Push Outcome = "push"
	Lose Outcome = "lose"
)

const (
	DealerStandsOn = 17
	DefaultChips   = 1000
)

// ChipDenominations are the bet increments offered to a player.
var ChipDenominations = []int{10, 50, 100}

// Settlement records how a finished round was paid.
type Settlement struct {
	Round       int     `json:"round"`
	Outcome     Outcome `json:"outcome"`
	Bet         int     `json:"bet"`
	Payout      int     `json:"payout"`
	PlayerValue int     `json:"playerValue"`
	DealerValue int     `json:"dealerValue"`
	PlayerHand  Hand    `json:"playerHand"`
	DealerHand  Hand    `json:"dealerHand"`
	Message     string  `json:"message"`
	ChipsAfter  int     `json:"chipsAfter"`
}

// Round is the betting and playing state machine of a single-player table.
// Every action called outside the state it belongs to is silently ignored; the
// returned bool only tells whether the state changed.
type Round struct {
	shoe    *Shoe
	player  Hand
	dealer  Hand
	bet     int
	chips   int
	over    bool
	message string
	advice  Advice
	played  int
	last    *Settlement
}

// NewRound creates a round waiting for a bet
func NewRound(shoe *Shoe, chips int) *Round {
	if shoe == nil {
		shoe = NewShoe(nil)
	}
	return &Round{
		shoe:  shoe,
		chips: chips,
		over:  true,
	}
}

func (r *Round) Phase() Phase {
	if r.over {
		return Betting
	}
	return Playing
}

func (r *Round) Chips() int          { return r.chips }
func (r *Round) Bet() int            { return r.bet }
func (r *Round) Over() bool          { return r.over }
func (r *Round) Message() string     { return r.message }
func (r *Round) Advice() Advice      { return r.advice }
func (r *Round) RoundsPlayed() int   { return r.played }
func (r *Round) ShoeRemaining() int  { return r.shoe.Remaining() }
func (r *Round) PlayerHand() Hand    { return r.player.clone() }
func (r *Round) DealerHand() Hand    { return r.dealer.clone() }
func (r *Round) Recommended() Action { return r.advice.Action }

// LastSettlement returns the settlement of the most recently finished round.
func (r *Round) LastSettlement() (Settlement, bool) {
	if r.last == nil {
		return Settlement{}, false
	}
	return *r.last, true
}

func (r *Round) CanBet(amount int) bool {
	return r.over && amount > 0 && r.chips >= amount
}

func (r *Round) CanClear() bool { return r.over && r.bet > 0 }
func (r *Round) CanDeal() bool  { return r.over && r.bet > 0 }
func (r *Round) CanHit() bool   { return !r.over }
func (r *Round) CanStand() bool { return !r.over }

func (r *Round) CanDouble() bool {
	return !r.over && len(r.player) == 2 && r.chips >= r.bet
}

// PlaceBet moves amount from the chip stack onto the bet
func (r *Round) PlaceBet(amount int) bool {
	if !r.CanBet(amount) {
		return false
	}
	r.chips -= amount
	r.bet += amount
	return true
}

// ClearBet returns the pending bet to the chip stack
func (r *Round) ClearBet() bool {
	if !r.over {
		return false
	}
	r.chips += r.bet
	r.bet = 0
	return true
}

// Deal starts a round: two cards to the player, two to the dealer.
func (r *Round) Deal() bool {
	if !r.CanDeal() {
		return false
	}

	r.player = Hand{r.shoe.Deal(), r.shoe.Deal()}
	r.dealer = Hand{r.shoe.Deal(), r.shoe.Deal()}
	r.over = false
	r.message = ""
	r.refreshAdvice()
	return true
}

// Hit gives the player another card and settles a bust immediately
func (r *Round) Hit() bool {
	if r.over {
		return false
	}

	r.player = append(r.player, r.shoe.Deal())
	if r.player.IsBust() {
		r.message = "Player Bust!"
		r.settle(Lose)
	}
	r.refreshAdvice()
	return true
}

// Stand plays out the dealer and settles the bet
func (r *Round) Stand() bool {
	if r.over {
		return false
	}

	// Dealer draws to 17 and stands on every 17, soft or hard
	for r.dealer.Value() < DealerStandsOn {
		r.dealer = append(r.dealer, r.shoe.Deal())
	}

	playerValue := r.player.Value()
	dealerValue := r.dealer.Value()

	switch {
	case dealerValue > 21:
		r.message = "Dealer Bust, Player Wins!"
		r.settle(Win)
	case playerValue > dealerValue:
		r.message = "Player Wins!"
		r.settle(Win)
	case playerValue == dealerValue:
		r.message = "Push!"
		r.settle(Push)
	default:
		r.message = "Dealer Wins!"
		r.settle(Lose)
	}
	r.refreshAdvice()
	return true
}

// Double doubles the bet, takes exactly one card and stands.
func (r *Round) Double() bool {
	if !r.CanDouble() {
		return false
	}

	r.chips -= r.bet
	r.bet *= 2
	r.Hit()
	r.Stand() // no-op when the hit busted
	return true
}

// settle pays out the bet and ends the round. It runs once per round from
// whichever terminal path finished it.
func (r *Round) settle(outcome Outcome) {
	payout := 0
	switch outcome {
	case Win:
		payout = r.bet * 2
	case Push:
		payout = r.bet
	}

	r.chips += payout
	r.played++
	r.last = &Settlement{
		Round:       r.played,
		Outcome:     outcome,
		Bet:         r.bet,
		Payout:      payout,
		PlayerValue: r.player.Value(),
		DealerValue: r.dealer.Value(),
		PlayerHand:  r.player.clone(),
		DealerHand:  r.dealer.clone(),
		Message:     r.message,
		ChipsAfter:  r.chips,
	}
	r.bet = 0
	r.over = true
}

func (r *Round) refreshAdvice() {
	if r.over {
		r.advice = Advice{}
		return
	}
	r.advice = Advise(r.player, r.dealer)
}
