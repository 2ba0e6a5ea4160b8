// Package config resolves server settings from flags, the environment and an
// optional .env file, in that order of precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/calvinwijaya/blackjack-advisor/internal/game"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Port          string
	DatabaseURL   string // sqlite file path or postgres:// URL; empty disables history
	FrontendURL   string
	StartChips    int
	AutoplayDelay time.Duration
	TickInterval  time.Duration
	LogLevel      zerolog.Level
	DeckSeed      int64 // 0 shuffles from the clock
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func durationDef(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// Load reads .env (when present) and parses args on top of the environment.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	var (
		cfg      Config
		logLevel string
		seed     string
	)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", getenv("PORT", "8080"), "Server port")
	fs.StringVar(&cfg.DatabaseURL, "db", getenv("DATABASE_URL", getenv("DB_PATH", "./data/blackjack.db")), "Round history database: sqlite path or postgres:// URL, empty to disable")
	fs.StringVar(&cfg.FrontendURL, "frontend", getenv("FRONTEND_URL", "http://localhost:5173"), "Frontend URL for CORS")
	fs.IntVar(&cfg.StartChips, "chips", atoiDef(os.Getenv("START_CHIPS"), game.DefaultChips), "Starting chips per session")
	fs.DurationVar(&cfg.AutoplayDelay, "autoplay-delay", durationDef(os.Getenv("AUTOPLAY_DELAY"), game.DefaultAutoplayDelay), "Minimum wait between autoplay actions")
	fs.DurationVar(&cfg.TickInterval, "tick", durationDef(os.Getenv("TICK_INTERVAL"), 50*time.Millisecond), "Autoplay polling interval")
	fs.StringVar(&logLevel, "log-level", getenv("LOG_LEVEL", "info"), "Log level")
	fs.StringVar(&seed, "seed", getenv("DECK_SEED", "0"), "Shuffle seed, 0 for random")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	cfg.LogLevel = level

	cfg.DeckSeed, err = strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid seed %q: %w", seed, err)
	}

	if cfg.StartChips <= 0 {
		return Config{}, fmt.Errorf("starting chips must be positive, got %d", cfg.StartChips)
	}
	if cfg.TickInterval <= 0 {
		return Config{}, fmt.Errorf("tick interval must be positive, got %s", cfg.TickInterval)
	}
	if cfg.AutoplayDelay <= 0 {
		return Config{}, fmt.Errorf("autoplay delay must be positive, got %s", cfg.AutoplayDelay)
	}

	return cfg, nil
}
