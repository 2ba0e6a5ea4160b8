// Package table runs one blackjack session on its own goroutine. The session
// itself is not safe for concurrent use, so every command, query and autoplay
// tick goes through the table's loop one at a time.
package table

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/calvinwijaya/blackjack-advisor/internal/game"
	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("table closed")

const (
	DefaultTickInterval = 50 * time.Millisecond
	recordTimeout       = 2 * time.Second
)

// Recorder persists finished rounds.
type Recorder interface {
	RecordRound(ctx context.Context, gameID string, s game.Settlement) error
}

// Publisher receives a snapshot after every state change.
type Publisher func(game.Snapshot)

type Config struct {
	TickInterval time.Duration
	Recorder     Recorder  // optional
	Publisher    Publisher // optional
	Logger       zerolog.Logger
}

type request struct {
	cmd    game.Command
	amount int
	query  bool
	reply  chan response
}

type response struct {
	snap    game.Snapshot
	applied bool
	err     error
}

// Table owns a game session and serializes access to it.
type Table struct {
	game     *game.BlackjackGame
	requests chan request
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once

	tick     time.Duration
	recorder Recorder
	publish  Publisher
	recorded int
	log      zerolog.Logger
}

// Open starts the loop for g. Close must be called to stop it.
func Open(g *game.BlackjackGame, cfg Config) *Table {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	t := &Table{
		game:     g,
		requests: make(chan request),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		tick:     cfg.TickInterval,
		recorder: cfg.Recorder,
		publish:  cfg.Publisher,
		recorded: g.Round.RoundsPlayed(),
		log:      cfg.Logger.With().Str("game", g.ID).Logger(),
	}
	go t.run()
	return t
}

func (t *Table) ID() string { return t.game.ID }

func (t *Table) CreatedAt() time.Time { return t.game.CreatedAt }

func (t *Table) run() {
	ticker := time.NewTicker(t.tick)
	defer func() {
		ticker.Stop()
		close(t.done)
	}()

	t.log.Debug().Dur("tick", t.tick).Msg("table loop started")

	for {
		select {
		case req := <-t.requests:
			req.reply <- t.handle(req)

		case now := <-ticker.C:
			if t.game.Tick(now) {
				t.changed()
			}

		case <-t.quit:
			t.log.Debug().Msg("table loop stopped")
			return
		}
	}
}

func (t *Table) handle(req request) response {
	if req.query {
		return response{snap: t.game.State()}
	}

	applied, err := t.game.Dispatch(req.cmd, req.amount, time.Now())
	if err != nil {
		return response{snap: t.game.State(), err: err}
	}

	t.log.Debug().
		Str("command", string(req.cmd)).
		Int("amount", req.amount).
		Bool("applied", applied).
		Msg("command")

	if applied {
		t.changed()
	}
	return response{snap: t.game.State(), applied: applied}
}

// changed records a freshly settled round and publishes the new state.
func (t *Table) changed() {
	if played := t.game.Round.RoundsPlayed(); played > t.recorded {
		t.recorded = played
		if s, ok := t.game.Round.LastSettlement(); ok {
			t.log.Info().
				Int("round", s.Round).
				Str("outcome", string(s.Outcome)).
				Int("bet", s.Bet).
				Int("chips", s.ChipsAfter).
				Msg("round settled")
			t.record(s)
		}
	}

	if t.publish != nil {
		t.publish(t.game.State())
	}
}

func (t *Table) record(s game.Settlement) {
	if t.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	// A failed write never undoes the round
	if err := t.recorder.RecordRound(ctx, t.game.ID, s); err != nil {
		t.log.Error().Err(err).Int("round", s.Round).Msg("failed to record round")
	}
}

func (t *Table) roundTrip(ctx context.Context, req request) (response, error) {
	req.reply = make(chan response, 1)

	select {
	case t.requests <- req:
	case <-t.quit:
		return response{}, ErrClosed
	case <-ctx.Done():
		return response{}, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp, resp.err
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// Do runs a command and returns the resulting state. applied is false when
// the command did not apply to the current state.
func (t *Table) Do(ctx context.Context, cmd game.Command, amount int) (snap game.Snapshot, applied bool, err error) {
	resp, err := t.roundTrip(ctx, request{cmd: cmd, amount: amount})
	if err != nil {
		return game.Snapshot{}, false, err
	}
	return resp.snap, resp.applied, nil
}

// State returns the current snapshot.
func (t *Table) State(ctx context.Context) (game.Snapshot, error) {
	resp, err := t.roundTrip(ctx, request{query: true})
	if err != nil {
		return game.Snapshot{}, err
	}
	return resp.snap, nil
}

// Close stops the loop and waits for it to exit. It is safe to call twice.
func (t *Table) Close() {
	t.once.Do(func() { close(t.quit) })
	<-t.done
}
