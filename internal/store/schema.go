package store

// schemaStatements returns the DDL for the given dialect. The two variants
// differ only in the surrogate-key column of score_history and the integer
// width of user ids.
func schemaStatements(dialect Dialect) []string {
	if dialect == DialectPostgres {
		return []string{
			`CREATE TABLE IF NOT EXISTS players (
				user_id BIGINT PRIMARY KEY,
				nickname TEXT NOT NULL DEFAULT 'Player',
				avatar TEXT NOT NULL DEFAULT 'avatar1',
				total_taps BIGINT NOT NULL DEFAULT 0,
				best_score BIGINT NOT NULL DEFAULT 0,
				tap_power BIGINT NOT NULL DEFAULT 1,
				taps_per_minute BIGINT NOT NULL DEFAULT 0,
				last_updated TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS score_history (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES players(user_id) ON DELETE CASCADE,
				score BIGINT NOT NULL,
				recorded_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS completed_tasks (
				user_id BIGINT NOT NULL REFERENCES players(user_id) ON DELETE CASCADE,
				task_id TEXT NOT NULL,
				completed_at TIMESTAMP NOT NULL,
				PRIMARY KEY (user_id, task_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_players_ranking ON players(taps_per_minute DESC, total_taps DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_score_history_user ON score_history(user_id)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS players (
			user_id INTEGER PRIMARY KEY,
			nickname TEXT NOT NULL DEFAULT 'Player',
			avatar TEXT NOT NULL DEFAULT 'avatar1',
			total_taps INTEGER NOT NULL DEFAULT 0,
			best_score INTEGER NOT NULL DEFAULT 0,
			tap_power INTEGER NOT NULL DEFAULT 1,
			taps_per_minute INTEGER NOT NULL DEFAULT 0,
			last_updated TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS score_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES players(user_id) ON DELETE CASCADE,
			score INTEGER NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS completed_tasks (
			user_id INTEGER NOT NULL REFERENCES players(user_id) ON DELETE CASCADE,
			task_id TEXT NOT NULL,
			completed_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, task_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_players_ranking ON players(taps_per_minute DESC, total_taps DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_score_history_user ON score_history(user_id)`,
	}
}
