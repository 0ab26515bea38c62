package rest

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fortuna/bbref/internal/export"
	"github.com/fortuna/bbref/internal/runner"
	"github.com/fortuna/bbref/internal/store"
	"github.com/fortuna/bbref/internal/store/repository"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db      *store.Database
	players *repository.PlayerRepository
	games   *repository.GameLogRepository
	boxes   *repository.BoxScoreRepository
	runs    *runner.Repository
	logger  *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, logger *zap.Logger) *Handler {
	return &Handler{
		db:      db,
		players: repository.NewPlayerRepository(db),
		games:   repository.NewGameLogRepository(db),
		boxes:   repository.NewBoxScoreRepository(db),
		runs:    runner.NewRepository(db),
		logger:  logger,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "bbref",
		"dialect": string(h.db.Dialect()),
	})
}

// ListPlayers returns stored players, optionally for one team
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 100, 1000)
	players, err := h.players.List(r.Context(), r.URL.Query().Get("team"), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch players", err)
		return
	}

	out := make([]playerPayload, 0, len(players))
	for _, p := range players {
		out = append(out, newPlayerPayload(p))
	}
	respondJSON(w, http.StatusOK, out)
}

// ExportPlayers streams the roster export as CSV
func (h *Handler) ExportPlayers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="player_info.csv"`)

	n, err := export.Players(r.Context(), h.players, r.URL.Query().Get("team"), w)
	if err != nil {
		h.logger.Error("player export failed", zap.Error(err))
		return
	}
	h.logger.Debug("player export written", zap.Int("rows", n))
}

// ListGameLogs returns schedule rows filtered by season and team
func (h *Handler) ListGameLogs(w http.ResponseWriter, r *http.Request) {
	filter := repository.GameLogFilter{
		Team:  r.URL.Query().Get("team"),
		Limit: queryLimit(r, 100, 1000),
	}
	if s := r.URL.Query().Get("season"); s != "" {
		season, err := strconv.Atoi(s)
		if err != nil || season <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid season", err)
			return
		}
		filter.Season = season
	}

	games, err := h.games.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch gamelogs", err)
		return
	}

	out := make([]gameLogPayload, 0, len(games))
	for _, g := range games {
		out = append(out, newGameLogPayload(g))
	}
	respondJSON(w, http.StatusOK, out)
}

// ListBoxScores returns the basic box score of one game
func (h *Handler) ListBoxScores(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("link")
	if link == "" {
		respondError(w, http.StatusBadRequest, "link is required", nil)
		return
	}

	lines, err := h.boxes.ListBasic(r.Context(), link)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch box score", err)
		return
	}

	out := make([]boxScorePayload, 0, len(lines))
	for _, l := range lines {
		out = append(out, boxScorePayload{BoxScoreLine: l, MP: nullable(l.MP)})
	}
	respondJSON(w, http.StatusOK, out)
}

// ListAdvancedBoxScores returns the advanced box score of one game
func (h *Handler) ListAdvancedBoxScores(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("link")
	if link == "" {
		respondError(w, http.StatusBadRequest, "link is required", nil)
		return
	}

	lines, err := h.boxes.ListAdvanced(r.Context(), link)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch advanced box score", err)
		return
	}

	out := make([]advancedBoxScorePayload, 0, len(lines))
	for _, l := range lines {
		out = append(out, advancedBoxScorePayload{AdvancedBoxScoreLine: l, MP: nullable(l.MP)})
	}
	respondJSON(w, http.StatusOK, out)
}

// ListRuns returns the most recent pipeline runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.ListRecent(r.Context(), queryLimit(r, 20, 200))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch runs", err)
		return
	}

	out := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		out = append(out, runPayload(run))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetRun returns one pipeline run
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Get(r.Context(), mux.Vars(r)["runID"])
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch run", err)
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, runPayload(run))
}

// queryLimit reads ?limit=, falling back to def when absent or out of range.
func queryLimit(r *http.Request, def, max int) int {
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= max {
		return l
	}
	return def
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
