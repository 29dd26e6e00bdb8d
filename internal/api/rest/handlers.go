package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fortuna/ceres/internal/cache"
	"github.com/fortuna/ceres/internal/ingest/wiaa"
	"github.com/fortuna/ceres/internal/leaderboard"
	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/model"
	"github.com/fortuna/ceres/internal/store"
	"github.com/fortuna/ceres/internal/store/repository"
	"github.com/gorilla/mux"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	db           *store.Database
	games        *repository.GameRepository
	client       *wiaa.Client
	leaders      *leaderboard.Extractor
	leadersCache *cache.RedisCache
	log          *logging.Logger
}

// NewHandler creates a handler. db and leadersCache may be nil when the
// service runs without a store or Redis; game lookups then answer 503
// and every leaders read goes through the page pipeline.
func NewHandler(db *store.Database, client *wiaa.Client, leadersCache *cache.RedisCache, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Default()
	}

	h := &Handler{
		db:           db,
		client:       client,
		leaders:      leaderboard.NewExtractor(log),
		leadersCache: leadersCache,
		log:          log,
	}
	if db != nil {
		h.games = repository.NewGameRepository(db)
	}
	return h
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "ceres",
		"mode":    h.client.Mode(),
	})
}

// GetGames returns games, filtered by season slice when year is given.
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	if h.games == nil {
		respondError(w, http.StatusServiceUnavailable, "Store not configured", nil)
		return
	}

	q := r.URL.Query()
	if q.Get("year") == "" {
		limit := 50
		if limitStr := q.Get("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
				limit = l
			}
		}

		games, err := h.games.GetRecent(r.Context(), limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"games": games, "count": len(games)})
		return
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	gender := q.Get("gender")
	if gender == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'gender'", nil)
		return
	}

	var games []*store.Game
	if division := q.Get("division"); division != "" {
		games, err = h.games.GetByDivision(r.Context(), year, gender, division)
	} else {
		games, err = h.games.GetBySeason(r.Context(), year, gender)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"games": games, "count": len(games)})
}

// GetGame returns a specific game by ID.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	if h.games == nil {
		respondError(w, http.StatusServiceUnavailable, "Store not configured", nil)
		return
	}

	gameID, err := strconv.Atoi(mux.Vars(r)["gameID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid game ID", err)
		return
	}

	game, err := h.games.GetByID(r.Context(), gameID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Game not found", err)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

// GetLeaders returns the top entries of one season-leader category.
func (h *Handler) GetLeaders(w http.ResponseWriter, r *http.Request) {
	category := model.StatCategory(mux.Vars(r)["category"])
	if !category.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Unknown category: %s", category), nil)
		return
	}

	q := r.URL.Query()
	year := time.Now().Year()
	if yearStr := q.Get("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = y
	}
	gender := q.Get("gender")
	if gender == "" {
		gender = "Boys"
	}
	limit := 10
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if h.leadersCache != nil {
		if lines, ok := h.leadersCache.GetLeaders(r.Context(), year, gender, category, limit); ok {
			respondLeaders(w, category, year, gender, lines)
			return
		}
	}

	page, err := h.client.FetchLeaders(r.Context(), year, gender)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch leaders page", err)
		return
	}
	if page == nil {
		respondError(w, http.StatusNotFound, "Leaders page not available", nil)
		return
	}

	lines, err := h.leaders.Top(page, category, limit)
	if err != nil {
		respondError(w, http.StatusNotFound, "Category table not found", err)
		return
	}

	if h.leadersCache != nil {
		h.leadersCache.SetLeaders(r.Context(), year, gender, category, limit, lines, cache.DefaultTTL)
	}

	respondLeaders(w, category, year, gender, lines)
}

func respondLeaders(w http.ResponseWriter, category model.StatCategory, year int, gender string, lines []model.StatLine) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"year":     year,
		"gender":   gender,
		"leaders":  lines,
	})
}

// GetFetchHealth reports the bracket wrapper's outcome counters.
func (h *Handler) GetFetchHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mode":     h.client.Mode(),
		"counters": h.client.HealthSummary(),
	})
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
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
