package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Client stores draft picks in ClickHouse for cross-run analytics
type Client struct {
	conn driver.Conn
}

// NewClient creates a new ClickHouse client and makes sure the picks table exists
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	c := &Client{conn: conn}
	if err := c.ensureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureSchema(ctx context.Context) error {
	err := c.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS draft_picks (
			run_id     String,
			team_id    String,
			player_id  String,
			round      UInt16,
			overall    UInt16,
			lottery    Bool,
			picked_at  DateTime64(3)
		)
		ENGINE = MergeTree
		ORDER BY (player_id, picked_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to create draft_picks table: %w", err)
	}
	return nil
}

// RecordPick appends one pick
func (c *Client) RecordPick(ctx context.Context, p Pick) error {
	return c.conn.Exec(ctx, `
		INSERT INTO draft_picks (run_id, team_id, player_id, round, overall, lottery, picked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.RunID, p.TeamID, p.PlayerID, uint16(p.Round), uint16(p.Overall), p.Lottery, p.At)
}

// AverageDraftPositions computes the mean overall pick number per player over the last 90 days
func (c *Client) AverageDraftPositions(ctx context.Context) ([]PlayerADP, error) {
	rows, err := c.conn.Query(ctx, `
		SELECT
			player_id,
			avg(overall) AS adp,
			count() AS times_picked
		FROM draft_picks
		WHERE picked_at >= now() - INTERVAL 90 DAY
		GROUP BY player_id
		ORDER BY adp ASC, player_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PlayerADP{}
	for rows.Next() {
		var r PlayerADP
		var times uint64
		if err := rows.Scan(&r.PlayerID, &r.ADP, &times); err != nil {
			return nil, err
		}
		r.TimesPicked = int(times)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
