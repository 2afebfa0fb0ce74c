package dal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
)

// PostgresDAL implements DraftDAL using PostgreSQL
type PostgresDAL struct {
	*sqlStore
}

// NewPostgresDAL creates a new PostgreSQL data access layer optimized for CloudNativePG
func NewPostgresDAL(connString string) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// CloudNativePG default max_connections is 100
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute) // recycle across failovers
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Kubernetes DNS can lag behind pod startup
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()

		if lastErr == nil {
			break
		}

		logger.Warn("Postgres ping failed", "attempt", i+1, "error", lastErr)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	if lastErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	dal := &PostgresDAL{sqlStore: &sqlStore{db: db, dollars: true}}

	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return dal, nil
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		standing INTEGER NOT NULL,
		first_color TEXT NOT NULL DEFAULT '',
		second_color TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		position TEXT NOT NULL,
		team TEXT NOT NULL DEFAULT '',
		bats_throws TEXT NOT NULL DEFAULT '',
		height INTEGER NOT NULL DEFAULT 0,
		weight INTEGER NOT NULL DEFAULT 0,
		introduction TEXT NOT NULL DEFAULT '',
		scout_comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		rank TEXT NOT NULL CHECK (rank IN ('S', 'A', 'B', 'C', 'D')),
		velocity DOUBLE PRECISION,
		command DOUBLE PRECISION,
		breaking_ball DOUBLE PRECISION,
		mechanics DOUBLE PRECISION,
		bat_control DOUBLE PRECISION,
		power DOUBLE PRECISION,
		speed DOUBLE PRECISION,
		defense DOUBLE PRECISION,
		potential DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		state JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_comments_player_id ON comments(player_id);
	CREATE INDEX IF NOT EXISTS idx_players_category_position ON players(category, position);
	CREATE INDEX IF NOT EXISTS idx_runs_updated_at ON runs(updated_at);
	`

	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}

	return p.seedIfEmpty()
}
