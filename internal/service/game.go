package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlekseevDev/tapper-game/internal/config"
	"github.com/AlekseevDev/tapper-game/internal/domain"
	"github.com/AlekseevDev/tapper-game/internal/store"
	"github.com/AlekseevDev/tapper-game/internal/websocket"
)

// GameService provides business logic over the player-state store. It
// applies caller policy (leaderboard limits) and pushes fresh snapshots to
// websocket subscribers after submissions.
type GameService struct {
	store  *store.Store
	config *config.LeaderboardConfig
	logger *slog.Logger
	hub    *websocket.Hub
}

// NewGameService creates a new game service
func NewGameService(st *store.Store, cfg *config.LeaderboardConfig, logger *slog.Logger) *GameService {
	return &GameService{
		store:  st,
		config: cfg,
		logger: logger,
	}
}

// SetHub attaches the websocket hub used for leaderboard broadcasts
func (s *GameService) SetHub(hub *websocket.Hub) {
	s.hub = hub
}

// GetPlayer returns the player's current state, creating the default row on
// first access.
func (s *GameService) GetPlayer(ctx context.Context, userID int64) (domain.Player, error) {
	return s.store.GetPlayer(ctx, userID)
}

// SubmitResult merges a game-end submission into the player's row and, when
// subscribers are connected, broadcasts the refreshed leaderboard.
func (s *GameService) SubmitResult(ctx context.Context, userID int64, upd domain.PlayerUpdate) error {
	if err := s.store.UpdatePlayer(ctx, userID, upd); err != nil {
		return err
	}

	if s.hub != nil && s.hub.SubscriberCount() > 0 {
		entries, err := s.store.Leaderboard(ctx, s.config.DefaultLimit)
		if err != nil {
			// The submission itself succeeded; a failed broadcast read is
			// logged, not surfaced.
			s.logger.Warn("failed to read leaderboard for broadcast", "error", err)
			return nil
		}
		s.hub.BroadcastLeaderboard(entries)
	}
	return nil
}

// Leaderboard returns the ranked snapshot, clamping limit to configured
// bounds.
func (s *GameService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}
	entries, err := s.store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	return entries, nil
}

// CompleteTask records a one-time task completion; true means this call
// completed it, false means it was already done.
func (s *GameService) CompleteTask(ctx context.Context, userID int64, taskID string) (bool, error) {
	return s.store.CompleteTask(ctx, userID, taskID)
}

// CompletedTasks returns the set of tasks the player has completed.
func (s *GameService) CompletedTasks(ctx context.Context, userID int64) (map[string]bool, error) {
	return s.store.CompletedTasks(ctx, userID)
}

// Cleanup runs a retention sweep with the given window.
func (s *GameService) Cleanup(ctx context.Context, retentionDays int) error {
	return s.store.Cleanup(ctx, retentionDays)
}
