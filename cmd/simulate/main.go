// Command simulate plays blackjack rounds headlessly with the autoplay driver
// and reports how basic strategy fared.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/calvinwijaya/blackjack-advisor/internal/db"
	"github.com/calvinwijaya/blackjack-advisor/internal/game"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type tally struct {
	wins, pushes, losses int
	wagered, returned    int
}

func (t *tally) add(s game.Settlement) {
	switch s.Outcome {
	case game.Win:
		t.wins++
	case game.Push:
		t.pushes++
	default:
		t.losses++
	}
	t.wagered += s.Bet
	t.returned += s.Payout
}

func main() {
	_ = godotenv.Load()

	var (
		rounds   = flag.Int("rounds", 1000, "Rounds to play")
		seed     = flag.Int64("seed", 1, "Shuffle seed")
		chips    = flag.Int("chips", game.DefaultChips, "Starting chips")
		dsn      = flag.String("db", "", "Record rounds to this sqlite path or postgres:// URL")
		logLevel = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	var database *db.Database
	if *dsn != "" {
		database, err = db.NewDatabase(*dsn)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open database")
		}
		defer database.Close()
	}

	g := game.NewBlackjackGame(game.Options{
		StartChips: *chips,
		Rand:       rand.New(rand.NewSource(*seed)),
	})
	logger.Info().Str("game", g.ID).Int("rounds", *rounds).Int64("seed", *seed).Msg("simulation started")

	var (
		t     tally
		now   = time.Unix(0, 0)
		ctx   = context.Background()
		round = g.Round
	)

	for round.RoundsPlayed() < *rounds {
		if !g.Autoplay.State().Active {
			if round.Chips() == 0 {
				logger.Warn().Int("round", round.RoundsPlayed()).Msg("out of chips")
				break
			}
			if _, err := g.Dispatch(game.CmdAutoplay, 0, now); err != nil {
				logger.Fatal().Err(err).Msg("autoplay failed")
			}
		}

		before := round.RoundsPlayed()
		g.Tick(now)
		now = now.Add(g.Autoplay.State().Delay)

		if round.RoundsPlayed() == before {
			continue
		}
		s, _ := round.LastSettlement()
		t.add(s)
		logger.Debug().
			Int("round", s.Round).
			Str("outcome", string(s.Outcome)).
			Str("player", s.PlayerHand.String()).
			Str("dealer", s.DealerHand.String()).
			Int("chips", s.ChipsAfter).
			Msg(s.Message)

		if database != nil {
			if err := database.RecordRound(ctx, g.ID, s); err != nil {
				logger.Error().Err(err).Int("round", s.Round).Msg("failed to record round")
			}
		}
	}

	played := t.wins + t.pushes + t.losses
	event := logger.Info().
		Int("played", played).
		Int("wins", t.wins).
		Int("pushes", t.pushes).
		Int("losses", t.losses).
		Int("startChips", *chips).
		Int("finalChips", round.Chips()).
		Int("net", t.returned-t.wagered)
	if t.wagered > 0 {
		event = event.Float64("edge", float64(t.returned-t.wagered)/float64(t.wagered))
	}
	event.Msg("simulation finished")
}
