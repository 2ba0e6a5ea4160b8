package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/calvinwijaya/blackjack-advisor/internal/db"
	"github.com/calvinwijaya/blackjack-advisor/internal/game"
	"github.com/calvinwijaya/blackjack-advisor/internal/store"
	"github.com/calvinwijaya/blackjack-advisor/internal/table"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const requestTimeout = 5 * time.Second

// Settings are applied to every new session
type Settings struct {
	StartChips    int
	AutoplayDelay time.Duration
	TickInterval  time.Duration
	DeckSeed      int64 // 0 shuffles each session from the clock
}

// Handlers contains all the API handlers
type Handlers struct {
	store    store.Store
	database *db.Database
	hub      *Hub
	settings Settings
	seeded   atomic.Int64
	log      zerolog.Logger
}

// NewHandlers creates a new instance of Handlers. database may be nil, in
// which case round history is not kept.
func NewHandlers(store store.Store, database *db.Database, hub *Hub, settings Settings, logger zerolog.Logger) *Handlers {
	h := &Handlers{
		store:    store,
		database: database,
		hub:      hub,
		settings: settings,
		log:      logger,
	}
	if hub != nil {
		hub.OnAction(h.dispatch)
	}
	return h
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Game endpoints
	r.HandleFunc("/api/game/new", h.NewGame).Methods("POST")
	r.HandleFunc("/api/game/{id}/action", h.Action).Methods("POST")
	r.HandleFunc("/api/game/{id}/history", h.GetHistory).Methods("GET")
	r.HandleFunc("/api/game/{id}/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/api/game/{id}", h.GetGame).Methods("GET")
	r.HandleFunc("/api/game/{id}", h.CloseGame).Methods("DELETE")
	r.HandleFunc("/api/games", h.ListGames).Methods("GET")

	// Advisor
	r.HandleFunc("/api/strategy", h.GetStrategy).Methods("GET")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response(w, http.StatusOK, map[string]bool{"ok": true})
	}).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws", h.WebSocket)
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

func (h *Handlers) newRand() *rand.Rand {
	if h.settings.DeckSeed == 0 {
		return nil
	}
	n := h.seeded.Add(1)
	return rand.New(rand.NewSource(h.settings.DeckSeed + n - 1))
}

// NewGame starts a new session
func (h *Handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	g := game.NewBlackjackGame(game.Options{
		StartChips:    h.settings.StartChips,
		AutoplayDelay: h.settings.AutoplayDelay,
		Rand:          h.newRand(),
	})

	cfg := table.Config{
		TickInterval: h.settings.TickInterval,
		Logger:       h.log,
	}
	if h.database != nil {
		cfg.Recorder = h.database
	}
	if h.hub != nil {
		cfg.Publisher = h.hub.BroadcastGameUpdate
	}

	t := table.Open(g, cfg)
	if err := h.store.SaveTable(t); err != nil {
		t.Close()
		h.log.Error().Err(err).Msg("failed to save game")
		errorResponse(w, http.StatusInternalServerError, "Failed to save game")
		return
	}

	snap, err := t.State(r.Context())
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to read game")
		return
	}

	h.log.Info().Str("game", g.ID).Int("chips", snap.Chips).Msg("game created")
	response(w, http.StatusCreated, snap)
}

// GetGame returns the current state of a game
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w, r)
	if !ok {
		return
	}

	snap, err := t.State(r.Context())
	if err != nil {
		h.tableError(w, err)
		return
	}

	response(w, http.StatusOK, snap)
}

type actionRequest struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

type actionResponse struct {
	Applied bool          `json:"applied"`
	Game    game.Snapshot `json:"game"`
}

// Action runs a player command against a game
func (h *Handlers) Action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := mux.Vars(r)["id"]
	snap, applied, err := h.dispatch(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrUnknownCommand):
			errorResponse(w, http.StatusBadRequest, "Unknown action "+strconv.Quote(req.Action))
		case errors.Is(err, store.ErrGameNotFound):
			errorResponse(w, http.StatusNotFound, "Game not found")
		default:
			h.tableError(w, err)
		}
		return
	}

	response(w, http.StatusOK, actionResponse{Applied: applied, Game: snap})
}

// dispatch is shared by the HTTP and WebSocket paths
func (h *Handlers) dispatch(ctx context.Context, gameID string, req actionRequest) (game.Snapshot, bool, error) {
	cmd, err := game.ParseCommand(req.Action)
	if err != nil {
		return game.Snapshot{}, false, err
	}

	t, err := h.store.GetTable(gameID)
	if err != nil {
		return game.Snapshot{}, false, err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	return t.Do(ctx, cmd, req.Amount)
}

// CloseGame stops a session and forgets it
func (h *Handlers) CloseGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	t, err := h.store.DeleteTable(id)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}
	t.Close()

	watchers := 0
	if h.hub != nil {
		watchers = h.hub.ClientCount(id)
		h.hub.BroadcastToGame(id, Message{Type: "gameClosed", GameID: id})
	}

	h.log.Info().Str("game", id).Int("watchers", watchers).Msg("game closed")
	response(w, http.StatusOK, map[string]string{
		"success": "true",
		"message": "Game closed",
	})
}

// ListGames returns a summary of every live session
func (h *Handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.GetAllTables()
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving games")
		return
	}

	games := make([]map[string]interface{}, 0, len(tables))
	for _, t := range tables {
		snap, err := t.State(r.Context())
		if err != nil {
			// closed between listing and reading
			continue
		}
		games = append(games, map[string]interface{}{
			"id":           snap.ID,
			"phase":        snap.Phase,
			"chips":        snap.Chips,
			"roundsPlayed": snap.RoundsPlayed,
			"autoplay":     snap.Autoplay.Active,
			"lastUpdated":  snap.UpdatedAt.Format(time.RFC3339),
		})
	}

	response(w, http.StatusOK, games)
}

// GetHistory returns recorded rounds of a game, newest first
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.database == nil {
		errorResponse(w, http.StatusServiceUnavailable, "Database not available")
		return
	}

	id := mux.Vars(r)["id"]
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	rounds, err := h.database.ListRounds(r.Context(), id, limit)
	if err != nil {
		h.log.Error().Err(err).Str("game", id).Msg("failed to list rounds")
		errorResponse(w, http.StatusInternalServerError, "Error retrieving history")
		return
	}

	response(w, http.StatusOK, rounds)
}

// GetStats returns aggregate results of a game
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.database == nil {
		errorResponse(w, http.StatusServiceUnavailable, "Database not available")
		return
	}

	id := mux.Vars(r)["id"]
	stats, err := h.database.GetGameStats(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("game", id).Msg("failed to read stats")
		errorResponse(w, http.StatusInternalServerError, "Error retrieving statistics")
		return
	}

	response(w, http.StatusOK, stats)
}

// GetStrategy returns the basic strategy chart
func (h *Handlers) GetStrategy(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, map[string]interface{}{
		"upcards": []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "A"},
		"rows":    game.Chart(),
	})
}

// WebSocket upgrades a connection that follows one game
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		errorResponse(w, http.StatusServiceUnavailable, "Live updates not available")
		return
	}

	gameID := r.URL.Query().Get("gameId")

	t, err := h.store.GetTable(gameID)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}

	snap, err := t.State(r.Context())
	if err != nil {
		h.tableError(w, err)
		return
	}

	h.hub.ServeWS(w, r, gameID, Message{Type: "gameUpdate", GameID: gameID, Data: snap})
}

func (h *Handlers) table(w http.ResponseWriter, r *http.Request) (*table.Table, bool) {
	t, err := h.store.GetTable(mux.Vars(r)["id"])
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Game not found")
		return nil, false
	}
	return t, true
}

func (h *Handlers) tableError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, table.ErrClosed):
		errorResponse(w, http.StatusGone, "Game closed")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		errorResponse(w, http.StatusServiceUnavailable, "Game busy")
	default:
		h.log.Error().Err(err).Msg("table request failed")
		errorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}
