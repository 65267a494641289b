package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CompleteTask marks taskID completed for userID. Returns true when this
// call recorded the completion, false when the pair already existed —
// duplicate attempts are absorbed, not errors.
func (s *Store) CompleteTask(ctx context.Context, userID int64, taskID string) (bool, error) {
	var inserted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		if err := s.ensurePlayerTx(tx, userID, now); err != nil {
			return err
		}
		res, err := tx.Exec(s.q(`
			INSERT INTO completed_tasks (user_id, task_id, completed_at)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, task_id) DO NOTHING`),
			userID, taskID, now)
		if err != nil {
			return fmt.Errorf("recording completion: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reading affected rows: %w", err)
		}
		inserted = n > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("complete task %q for player %d: %w", taskID, userID, err)
	}
	return inserted, nil
}

// CompletedTasks returns the set of task ids completed by userID.
func (s *Store) CompletedTasks(ctx context.Context, userID int64) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT task_id FROM completed_tasks WHERE user_id = ?`), userID)
	if err != nil {
		return nil, fmt.Errorf("completed tasks for player %d: %w", userID, err)
	}
	defer rows.Close()

	tasks := make(map[string]bool)
	for rows.Next() {
		var taskID string
		if err := rows.Scan(&taskID); err != nil {
			return nil, fmt.Errorf("completed tasks for player %d: scanning row: %w", userID, err)
		}
		tasks[taskID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completed tasks for player %d: %w", userID, err)
	}
	return tasks, nil
}
