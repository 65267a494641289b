package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Cleanup deletes score-history entries older than retentionDays and player
// rows that are both older than the window and have zero recorded activity.
// Players with any taps are kept regardless of age. Runs in one transaction;
// invocations must not overlap (the retention worker serializes them).
func (s *Store) Cleanup(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	var historyDeleted, playersDeleted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(s.q(`DELETE FROM score_history WHERE recorded_at < ?`), cutoff)
		if err != nil {
			return fmt.Errorf("deleting stale history: %w", err)
		}
		historyDeleted, _ = res.RowsAffected()

		res, err = tx.Exec(s.q(`
			DELETE FROM players
			WHERE last_updated < ? AND total_taps = 0 AND taps_per_minute = 0`), cutoff)
		if err != nil {
			return fmt.Errorf("deleting inactive players: %w", err)
		}
		playersDeleted, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("cleanup (retention %dd): %w", retentionDays, err)
	}

	s.logger.Info("retention sweep completed",
		"retention_days", retentionDays,
		"history_deleted", historyDeleted,
		"players_deleted", playersDeleted,
	)
	return nil
}
