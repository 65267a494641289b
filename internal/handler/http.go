package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AlekseevDev/tapper-game/internal/domain"
	"github.com/AlekseevDev/tapper-game/internal/service"
	"github.com/AlekseevDev/tapper-game/internal/websocket"
	"github.com/AlekseevDev/tapper-game/internal/worker"
)

// Handler provides HTTP handlers for the tapper-game API
type Handler struct {
	service *service.GameService
	hub     *websocket.Hub
	sweeper *worker.RetentionWorker
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc *service.GameService, hub *websocket.Hub, sweeper *worker.RetentionWorker, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		hub:     hub,
		sweeper: sweeper,
		logger:  logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint for leaderboard pushes
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/players/{userID}", func(r chi.Router) {
			r.Get("/", h.GetPlayer)
			r.Post("/", h.SubmitResult)
			r.Get("/tasks", h.GetCompletedTasks)
			r.Post("/tasks/{taskID}", h.CompleteTask)
		})

		r.Get("/leaderboard", h.GetLeaderboard)

		r.Post("/admin/cleanup", h.TriggerCleanup)
	})

	return r
}

// corsMiddleware adds CORS headers; the game web app lives on another origin
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidRequest
	}
	return id, nil
}

// HandleWebSocket handles websocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// GetPlayer returns a player's state, creating the default row on first
// access
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	player, err := h.service.GetPlayer(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get player", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, player)
}

// SubmitResult handles a game-end submission
func (h *Handler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var upd domain.PlayerUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		if errors.Is(err, domain.ErrInvalidUpdate) {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidUpdate)
			return
		}
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	if upd.Empty() {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.service.SubmitResult(r.Context(), userID, upd); err != nil {
		h.logger.Error("failed to submit result", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]string{"status": "accepted"})
}

// GetLeaderboard returns the ranked snapshot
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to get leaderboard", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}

	h.writeSuccess(w, entries)
}

// CompleteTask records a one-time task completion for a player
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	completed, err := h.service.CompleteTask(r.Context(), userID, taskID)
	if err != nil {
		h.logger.Error("failed to complete task", "user_id", userID, "task_id", taskID, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]bool{"completed": completed})
}

// GetCompletedTasks returns all completed task ids for a player
func (h *Handler) GetCompletedTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	tasks, err := h.service.CompletedTasks(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get completed tasks", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	h.writeSuccess(w, ids)
}

// TriggerCleanup runs a retention sweep immediately
func (h *Handler) TriggerCleanup(w http.ResponseWriter, r *http.Request) {
	if err := h.sweeper.RunOnce(r.Context()); err != nil {
		h.logger.Error("manual cleanup failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}
	h.writeSuccess(w, map[string]string{"status": "swept"})
}
