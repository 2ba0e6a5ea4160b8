package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/calvinwijaya/blackjack-advisor/internal/game"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Database stores the history of finished rounds. It is an audit log only;
// chip balances are never restored from it.
type Database struct {
	db     *sql.DB
	driver string
}

// RoundRecord is one settled round as stored
type RoundRecord struct {
	ID          string       `json:"id"`
	GameID      string       `json:"gameId"`
	Round       int          `json:"round"`
	Outcome     game.Outcome `json:"outcome"`
	Bet         int          `json:"bet"`
	Payout      int          `json:"payout"`
	PlayerValue int          `json:"playerValue"`
	DealerValue int          `json:"dealerValue"`
	PlayerHand  game.Hand    `json:"playerHand"`
	DealerHand  game.Hand    `json:"dealerHand"`
	Message     string       `json:"message"`
	ChipsAfter  int          `json:"chipsAfter"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type GameStats struct {
	GameID       string  `json:"gameId"`
	RoundsPlayed int     `json:"roundsPlayed"`
	Wins         int     `json:"wins"`
	Pushes       int     `json:"pushes"`
	Losses       int     `json:"losses"`
	TotalBets    int     `json:"totalBets"`
	TotalPayout  int     `json:"totalPayout"`
	Net          int     `json:"net"`
	WinRate      float64 `json:"winRate"`
}

// driverFor picks the SQL driver for a data source: postgres URLs use lib/pq,
// anything else is a sqlite file path.
func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

// IsSQLite reports whether dsn names a sqlite file
func IsSQLite(dsn string) bool {
	return driverFor(dsn) == "sqlite3"
}

// NewDatabase opens the database and creates its tables
func NewDatabase(dsn string) (*Database, error) {
	driver := driverFor(dsn)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := initTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Database{db: db, driver: driver}, nil
}

// initTables creates the necessary tables if they don't exist
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			bet INTEGER NOT NULL,
			payout INTEGER NOT NULL,
			player_value INTEGER NOT NULL,
			dealer_value INTEGER NOT NULL,
			player_hand TEXT NOT NULL,
			dealer_hand TEXT NOT NULL,
			message TEXT NOT NULL,
			chips_after INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating rounds table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS rounds_game_id ON rounds (game_id, round)`)
	if err != nil {
		return fmt.Errorf("error creating rounds index: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Driver returns the SQL driver in use
func (d *Database) Driver() string {
	return d.driver
}

// RecordRound saves a settled round
func (d *Database) RecordRound(ctx context.Context, gameID string, s game.Settlement) error {
	playerHand, err := json.Marshal(s.PlayerHand)
	if err != nil {
		return err
	}
	dealerHand, err := json.Marshal(s.DealerHand)
	if err != nil {
		return err
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO rounds (id, game_id, round, outcome, bet, payout, player_value, dealer_value,
			player_hand, dealer_hand, message, chips_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		uuid.New().String(), gameID, s.Round, string(s.Outcome), s.Bet, s.Payout, s.PlayerValue, s.DealerValue,
		string(playerHand), string(dealerHand), s.Message, s.ChipsAfter, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error saving round %d: %w", s.Round, err)
	}
	return nil
}

// ListRounds returns the most recent rounds of a game, newest first
func (d *Database) ListRounds(ctx context.Context, gameID string, limit int) ([]RoundRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, game_id, round, outcome, bet, payout, player_value, dealer_value,
			player_hand, dealer_hand, message, chips_after, created_at
		FROM rounds WHERE game_id = $1 ORDER BY round DESC LIMIT $2
	`, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []RoundRecord{}
	for rows.Next() {
		var rec RoundRecord
		var outcome, playerHand, dealerHand string
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.Round, &outcome, &rec.Bet, &rec.Payout,
			&rec.PlayerValue, &rec.DealerValue, &playerHand, &dealerHand, &rec.Message,
			&rec.ChipsAfter, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Outcome = game.Outcome(outcome)
		if err := json.Unmarshal([]byte(playerHand), &rec.PlayerHand); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(dealerHand), &rec.DealerHand); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetGameStats aggregates the recorded rounds of a game
func (d *Database) GetGameStats(ctx context.Context, gameID string) (*GameStats, error) {
	stats := GameStats{GameID: gameID}

	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'win' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'push' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'lose' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(bet), 0),
			COALESCE(SUM(payout), 0)
		FROM rounds WHERE game_id = $1
	`, gameID).Scan(&stats.RoundsPlayed, &stats.Wins, &stats.Pushes, &stats.Losses,
		&stats.TotalBets, &stats.TotalPayout)
	if err != nil {
		return nil, fmt.Errorf("error getting stats for %s: %w", gameID, err)
	}

	stats.Net = stats.TotalPayout - stats.TotalBets
	if stats.RoundsPlayed > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.RoundsPlayed)
	}

	return &stats, nil
}
