package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fantasy-casino-backend/internal/models"
)

// Store is the durable ledger and progression repository backed by
// SQLite. Every balance mutation commits together with the transaction
// row that records it; business rules live in the services, the store
// only offers atomic compare-and-update primitives and dumb reads and
// writes.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL DEFAULT '',
	balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	kind TEXT NOT NULL,
	amount INTEGER NOT NULL,
	meta TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, id);

CREATE TABLE IF NOT EXISTS game_rounds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	game TEXT NOT NULL,
	bet INTEGER NOT NULL,
	payout INTEGER NOT NULL CHECK (payout >= 0),
	state TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_rounds_user ON game_rounds(user_id, id);

CREATE TABLE IF NOT EXISTS daily_bonus (
	user_id INTEGER PRIMARY KEY REFERENCES users(id),
	last_claimed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_stats (
	user_id INTEGER PRIMARY KEY REFERENCES users(id),
	xp INTEGER NOT NULL DEFAULT 0,
	total_wagered INTEGER NOT NULL DEFAULT 0,
	total_won INTEGER NOT NULL DEFAULT 0,
	games_played INTEGER NOT NULL DEFAULT 0,
	wins INTEGER NOT NULL DEFAULT 0,
	losses INTEGER NOT NULL DEFAULT 0,
	biggest_win INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user_game_stats (
	user_id INTEGER NOT NULL REFERENCES users(id),
	game TEXT NOT NULL,
	games_played INTEGER NOT NULL DEFAULT 0,
	total_wagered INTEGER NOT NULL DEFAULT 0,
	total_won INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, game)
);

CREATE TABLE IF NOT EXISTS achievements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	threshold INTEGER NOT NULL,
	metric TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_achievements (
	user_id INTEGER NOT NULL REFERENCES users(id),
	achievement_id INTEGER NOT NULL REFERENCES achievements(id),
	unlocked_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, achievement_id)
);

CREATE TABLE IF NOT EXISTS missions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	target INTEGER NOT NULL,
	reward INTEGER NOT NULL,
	metric TEXT NOT NULL,
	frequency TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_missions (
	user_id INTEGER NOT NULL REFERENCES users(id),
	mission_id INTEGER NOT NULL REFERENCES missions(id),
	progress INTEGER NOT NULL DEFAULT 0,
	completed_at INTEGER,
	claimed_at INTEGER,
	PRIMARY KEY (user_id, mission_id)
);
`

// seedRows installs the reference achievements and missions. Reruns are
// no-ops thanks to the unique codes.
const seedRows = `
INSERT INTO achievements (code, title, description, threshold, metric) VALUES
	('first_win', 'First Win', 'Win your first round', 1, 'wins'),
	('loyal_player', 'Loyal Player', 'Play 50 rounds', 50, 'games_played'),
	('high_roller', 'High Roller', 'Wager 25,000 chips in total', 25000, 'total_wagered'),
	('big_win', 'Big Win', 'Win 5,000 chips in a single round', 5000, 'biggest_win')
ON CONFLICT(code) DO NOTHING;

INSERT INTO missions (code, title, description, target, reward, metric, frequency) VALUES
	('daily_games', 'Daily Grind', 'Play 5 rounds today', 5, 200, 'games_played', 'daily'),
	('daily_wager', 'Daily Wager', 'Wager 2,000 chips today', 2000, 300, 'total_wagered', 'daily'),
	('weekly_wins', 'Weekly Winner', 'Win 7,500 chips this week', 7500, 600, 'total_won', 'weekly')
ON CONFLICT(code) DO NOTHING;
`

// Open opens (creating if needed) the casino database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(seedRows); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed reference rows: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func timeToUnixMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func unixMillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func marshalMeta(meta models.Meta) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal meta: %w", err)
	}
	return string(data), nil
}

func unmarshalMeta(raw string) models.Meta {
	if raw == "" || raw == "{}" {
		return nil
	}
	var meta models.Meta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil
	}
	return meta
}
