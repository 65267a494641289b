package store

import (
	"context"
	"fmt"

	"github.com/AlekseevDev/tapper-game/internal/domain"
)

// Leaderboard returns up to limit players ranked by taps-per-minute, ties
// broken by lifetime taps. Players with no recorded activity are excluded.
// The result is a point-in-time snapshot.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT user_id, nickname, avatar, taps_per_minute, total_taps
		FROM players
		WHERE taps_per_minute > 0 OR total_taps > 0
		ORDER BY taps_per_minute DESC, total_taps DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Nickname, &e.Avatar, &e.TapsPerMinute, &e.TotalTaps); err != nil {
			return nil, fmt.Errorf("leaderboard: scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}
