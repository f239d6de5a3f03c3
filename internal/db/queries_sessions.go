package db

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/snug/internal/llm"
	"github.com/chris/snug/internal/session"
)

var _ session.Store = (*DB)(nil)

// Append adds a turn to a session, creating the session on first use.
func (d *DB) Append(ctx context.Context, id string, turn llm.Turn) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO sessions (id) VALUES (?) ON CONFLICT(id) DO UPDATE SET updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')",
		id,
	); err != nil {
		return fmt.Errorf("upserting session %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO turns (session_id, user_text, assistant_text) VALUES (?, ?, ?)",
		id, turn.User, turn.Assistant,
	); err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return tx.Commit()
}

// Load returns a session's turns in the order they were added.
func (d *DB) Load(ctx context.Context, id string) ([]llm.Turn, error) {
	var exists int
	if err := d.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE id = ?", id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("looking up session %s: %w", id, err)
	}
	if exists == 0 {
		return nil, session.ErrNotFound
	}

	rows, err := d.conn.QueryContext(ctx, "SELECT user_text, assistant_text FROM turns WHERE session_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("loading turns: %w", err)
	}
	defer rows.Close()

	var turns []llm.Turn
	for rows.Next() {
		var t llm.Turn
		if err := rows.Scan(&t.User, &t.Assistant); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// List returns sessions newest first.
func (d *DB) List(ctx context.Context) ([]session.Info, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT s.id, s.updated_at, COUNT(t.id), COALESCE(SUM(LENGTH(t.user_text) + LENGTH(t.assistant_text)), 0)
		FROM sessions s LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.updated_at DESC, s.id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Info
	for rows.Next() {
		var info session.Info
		var updated string
		if err := rows.Scan(&info.ID, &updated, &info.Turns, &info.Size); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		info.ModTime, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a session and its turns.
func (d *DB) Delete(ctx context.Context, id string) error {
	res, err := d.conn.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}
