package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AlekseevDev/tapper-game/internal/domain"
)

// GetPlayer returns the player row for userID, materializing and persisting
// a default row first if none exists. Callers never see not-found.
func (s *Store) GetPlayer(ctx context.Context, userID int64) (domain.Player, error) {
	var p domain.Player
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.ensurePlayerTx(tx, userID, time.Now().UTC()); err != nil {
			return err
		}
		var err error
		p, err = s.getPlayerTx(tx, userID)
		return err
	})
	if err != nil {
		return domain.Player{}, fmt.Errorf("get player %d: %w", userID, err)
	}
	return p, nil
}

// UpdatePlayer merges a partial game-end submission over the current row.
// Counters are merged by the storage engine itself — total_taps accumulates
// the session score, best_score and taps_per_minute take the running maximum
// — so concurrent submissions for the same player cannot lose increments.
// A positive session score also appends a history entry in the same
// transaction.
func (s *Store) UpdatePlayer(ctx context.Context, userID int64, upd domain.PlayerUpdate) error {
	upd.Normalize()
	now := time.Now().UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.ensurePlayerTx(tx, userID, now); err != nil {
			return err
		}

		max := s.greatest()
		query := fmt.Sprintf(`
			UPDATE players SET
				nickname = COALESCE(?, nickname),
				avatar = COALESCE(?, avatar),
				total_taps = total_taps + ?,
				best_score = %s(best_score, ?),
				tap_power = %s(1, COALESCE(?, tap_power)),
				taps_per_minute = %s(taps_per_minute, ?),
				last_updated = ?
			WHERE user_id = ?`, max, max, max)

		score := upd.Score.Int64(0)
		if _, err := tx.Exec(s.q(query),
			nullString(upd.Nickname),
			nullString(upd.Avatar),
			score,
			score,
			nullInt(upd.TapPower),
			upd.TapsPerMinute.Int64(0),
			now,
			userID,
		); err != nil {
			return fmt.Errorf("merging player row: %w", err)
		}

		if score > 0 {
			if err := s.appendScoreTx(tx, userID, score, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update player %d: %w", userID, err)
	}
	return nil
}

// ensurePlayerTx inserts the default row for userID if it is missing
func (s *Store) ensurePlayerTx(tx *sql.Tx, userID int64, now time.Time) error {
	_, err := tx.Exec(s.q(`
		INSERT INTO players (user_id, nickname, avatar, total_taps, best_score, tap_power, taps_per_minute, last_updated)
		VALUES (?, ?, ?, 0, 0, ?, 0, ?)
		ON CONFLICT (user_id) DO NOTHING`),
		userID, domain.DefaultNickname, domain.DefaultAvatar, domain.DefaultTapPower, now)
	if err != nil {
		return fmt.Errorf("materializing player row: %w", err)
	}
	return nil
}

// getPlayerTx reads one row, preserving the not-found distinction for
// internal callers.
func (s *Store) getPlayerTx(tx *sql.Tx, userID int64) (domain.Player, error) {
	var p domain.Player
	err := tx.QueryRow(s.q(`
		SELECT user_id, nickname, avatar, total_taps, best_score, tap_power, taps_per_minute, last_updated
		FROM players WHERE user_id = ?`), userID).
		Scan(&p.UserID, &p.Nickname, &p.Avatar, &p.TotalTaps, &p.BestScore, &p.TapPower, &p.TapsPerMinute, &p.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("reading player row: %w", err)
	}
	return p, nil
}

// appendScoreTx appends one entry to the score ledger. Pure insert; the
// ledger is never updated in place.
func (s *Store) appendScoreTx(tx *sql.Tx, userID, score int64, now time.Time) error {
	if _, err := tx.Exec(s.q(`
		INSERT INTO score_history (user_id, score, recorded_at)
		VALUES (?, ?, ?)`), userID, score, now); err != nil {
		return fmt.Errorf("appending score history: %w", err)
	}
	return nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(f *domain.FlexInt) any {
	if f == nil {
		return nil
	}
	return int64(*f)
}
