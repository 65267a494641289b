package domain

import "time"

// Defaults for a freshly materialized player row.
const (
	DefaultNickname = "Player"
	DefaultAvatar   = "avatar1"
	DefaultTapPower = 1
)

// Player is the durable per-player state, one row per platform user id.
type Player struct {
	UserID        int64     `json:"user_id"`
	Nickname      string    `json:"nickname"`
	Avatar        string    `json:"avatar"`
	TotalTaps     int64     `json:"total_taps"`
	BestScore     int64     `json:"best_score"`
	TapPower      int64     `json:"tap_power"`
	TapsPerMinute int64     `json:"taps_per_minute"`
	LastUpdated   time.Time `json:"last_updated"`
}

// LeaderboardEntry is the ranked projection of a player's public stats.
type LeaderboardEntry struct {
	UserID        int64  `json:"user_id"`
	Nickname      string `json:"nickname"`
	Avatar        string `json:"avatar"`
	TapsPerMinute int64  `json:"tapsPerMinute"`
	TotalTaps     int64  `json:"totalTaps"`
}
