package game

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command names an action the presentation layer can request.
type Command string

const (
	CmdBet      Command = "bet"
	CmdClear    Command = "clear"
	CmdDeal     Command = "deal"
	CmdHit      Command = "hit"
	CmdStand    Command = "stand"
	CmdDouble   Command = "double"
	CmdAutoplay Command = "autoplay"
	CmdStop     Command = "stop"
)

// Options configures a new game session.
type Options struct {
	StartChips    int
	AutoplayDelay time.Duration // zero means DefaultAutoplayDelay
	Rand          *rand.Rand // nil shuffles from the clock
}

// BlackjackGame is one player's session: the round state machine plus the
// autoplay driver acting on it. It is not safe for concurrent use; the owner
// serializes every call.
type BlackjackGame struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Round     *Round
	Autoplay  *Autoplay
}

// NewBlackjackGame creates a new session waiting for a bet
func NewBlackjackGame(opts Options) *BlackjackGame {
	if opts.StartChips <= 0 {
		opts.StartChips = DefaultChips
	}
	if opts.AutoplayDelay <= 0 {
		opts.AutoplayDelay = DefaultAutoplayDelay
	}

	round := NewRound(NewShoe(opts.Rand), opts.StartChips)
	now := time.Now()

	return &BlackjackGame{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		Round:     round,
		Autoplay:  NewAutoplay(round, opts.AutoplayDelay),
	}
}

type handler func(g *BlackjackGame, amount int, now time.Time) bool

var commands = map[Command]handler{
	CmdBet:      func(g *BlackjackGame, amount int, _ time.Time) bool { return g.Round.PlaceBet(amount) },
	CmdClear:    func(g *BlackjackGame, _ int, _ time.Time) bool { return g.Round.ClearBet() },
	CmdDeal:     func(g *BlackjackGame, _ int, _ time.Time) bool { return g.Round.Deal() },
	CmdHit:      func(g *BlackjackGame, _ int, _ time.Time) bool { return g.Round.Hit() },
	CmdStand:    func(g *BlackjackGame, _ int, _ time.Time) bool { return g.Round.Stand() },
	CmdDouble:   func(g *BlackjackGame, _ int, _ time.Time) bool { return g.Round.Double() },
	CmdAutoplay: func(g *BlackjackGame, _ int, now time.Time) bool { return g.Autoplay.Start(now) },
	CmdStop:     func(g *BlackjackGame, _ int, _ time.Time) bool { return g.Autoplay.Stop() },
}

// ParseCommand validates a command name.
func ParseCommand(name string) (Command, error) {
	cmd := Command(name)
	if _, ok := commands[cmd]; !ok {
		return "", ErrUnknownCommand
	}
	return cmd, nil
}

// Dispatch runs a command. Commands that do not apply to the current state
// are ignored and report false.
func (g *BlackjackGame) Dispatch(cmd Command, amount int, now time.Time) (bool, error) {
	h, ok := commands[cmd]
	if !ok {
		return false, ErrUnknownCommand
	}
	applied := h(g, amount, now)
	if applied {
		g.UpdatedAt = now
	}
	return applied, nil
}

// Tick advances autoplay to now.
func (g *BlackjackGame) Tick(now time.Time) bool {
	if g.Autoplay.Tick(now) {
		g.UpdatedAt = now
		return true
	}
	return false
}
