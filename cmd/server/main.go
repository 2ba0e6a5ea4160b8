package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/calvinwijaya/blackjack-advisor/internal/api"
	"github.com/calvinwijaya/blackjack-advisor/internal/config"
	"github.com/calvinwijaya/blackjack-advisor/internal/db"
	"github.com/calvinwijaya/blackjack-advisor/internal/store"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// statusRecorder captures the response code for the request log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrade through the logging middleware
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(cfg.LogLevel).With().Timestamp().Logger()

	// Initialize the store
	gameStore := store.NewMemoryStore()
	logger.Info().Msg("In-memory game store initialized")

	// Initialize the database
	database := openDatabase(cfg.DatabaseURL, logger)
	if database != nil {
		defer database.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize WebSocket hub
	hub := api.NewHub(logger)
	go hub.Run(ctx)
	logger.Info().Msg("WebSocket hub started")

	// Initialize API handlers
	handlers := api.NewHandlers(gameStore, database, hub, api.Settings{
		StartChips:    cfg.StartChips,
		AutoplayDelay: cfg.AutoplayDelay,
		TickInterval:  cfg.TickInterval,
		DeckSeed:      cfg.DeckSeed,
	}, logger)

	// Set up router
	r := mux.NewRouter()
	handlers.RegisterRoutes(r)

	// Add middleware for logging
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)
			logger.Debug().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Int("status", rec.status).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	})

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Block until we receive a termination signal
	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	tables, _ := gameStore.GetAllTables()
	for _, t := range tables {
		t.Close()
	}
	logger.Info().Int("games", len(tables)).Msg("Server stopped")
}

// openDatabase returns nil when history is disabled or unavailable; the
// server keeps running without it.
func openDatabase(dsn string, logger zerolog.Logger) *db.Database {
	if dsn == "" {
		logger.Info().Msg("Round history disabled")
		return nil
	}

	if db.IsSQLite(dsn) {
		// Create data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			logger.Warn().Err(err).Msg("Failed to create data directory")
		}
	}

	database, err := db.NewDatabase(dsn)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize database, continuing without round history")
		return nil
	}

	logger.Info().Str("driver", database.Driver()).Msg("Database initialized successfully")
	return database
}
