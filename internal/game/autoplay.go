package game

import "time"

const (
	AutoplayBatch        = 10
	DefaultAutoplayDelay = 500 * time.Millisecond
)

// AutoplayState is the status of the autoplay driver.
type AutoplayState struct {
	Active          bool          `json:"active"`
	RoundsRemaining int           `json:"roundsRemaining"`
	LastAction      time.Time     `json:"lastAction"`
	Delay           time.Duration `json:"delay"`
}

// Autoplay plays rounds on a Round by basic strategy. It is polled with Tick
// and acts at most once per Delay, so the play stays visible.
type Autoplay struct {
	round *Round
	state AutoplayState
}

func NewAutoplay(round *Round, delay time.Duration) *Autoplay {
	if delay < 0 {
		delay = 0
	}
	return &Autoplay{round: round, state: AutoplayState{Delay: delay}}
}

func (a *Autoplay) State() AutoplayState { return a.state }

// Start queues another batch of rounds. It only takes effect between rounds.
func (a *Autoplay) Start(now time.Time) bool {
	if !a.round.Over() {
		return false
	}
	if !a.state.Active {
		// the first step waits a full delay after activation
		a.state.LastAction = now
	}
	a.state.Active = true
	a.state.RoundsRemaining += AutoplayBatch
	return true
}

// Stop hands control back to the player.
func (a *Autoplay) Stop() bool {
	if !a.state.Active && a.state.RoundsRemaining == 0 {
		return false
	}
	a.deactivate()
	return true
}

func (a *Autoplay) deactivate() {
	a.state.Active = false
	a.state.RoundsRemaining = 0
}

// Tick performs the next autoplay step when one is due. It reports whether the
// round state changed.
func (a *Autoplay) Tick(now time.Time) bool {
	if !a.state.Active || a.state.RoundsRemaining <= 0 {
		return false
	}
	if now.Sub(a.state.LastAction) < a.state.Delay {
		return false
	}
	a.state.LastAction = now

	r := a.round
	if r.Over() {
		r.ClearBet()
		bet := r.Chips() / 10
		if bet < 1 {
			bet = 1
		}
		if bet > r.Chips() {
			bet = r.Chips()
		}
		if bet == 0 {
			a.deactivate()
			return true
		}
		r.PlaceBet(bet)
		r.Deal()
		return true
	}

	a.play()
	if r.Over() {
		a.state.RoundsRemaining--
		if a.state.RoundsRemaining <= 0 {
			a.deactivate()
		}
	}
	return true
}

func (a *Autoplay) play() {
	r := a.round
	advice := r.Advice()

	action := advice.Action
	switch action {
	case Double:
		if !r.CanDouble() {
			action = advice.Fallback
		}
	case Split, Surrender:
		action = advice.Fallback
	case None:
		action = Stand
	}

	switch action {
	case Double:
		r.Double()
	case Stand:
		r.Stand()
	default:
		r.Hit()
	}
}
