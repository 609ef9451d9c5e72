package postgres

import (
	"context"
	"database/sql"

	"github.com/entities-sink/ksink/internal/cursor"
)

// cursorStore persists the checkpoint directly on the outer *sql.DB
// connection — spec.md §4.9 requires it write outside the block's own
// transaction, so it deliberately does not go through tx.
type cursorStore struct {
	db *sql.DB
}

var _ cursor.Store = (*cursorStore)(nil)

func (c *cursorStore) Get(ctx context.Context) (cursor.Checkpoint, bool, error) {
	var cp cursor.Checkpoint
	err := c.db.QueryRowContext(ctx, `SELECT cursor_token, block_number FROM cursors WHERE id = 0`).
		Scan(&cp.Token, &cp.BlockNumber)
	if err == sql.ErrNoRows {
		return cursor.Checkpoint{}, false, nil
	}
	if err != nil {
		return cursor.Checkpoint{}, false, err
	}
	return cp, true, nil
}

func (c *cursorStore) Save(ctx context.Context, cp cursor.Checkpoint) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cursors (id, cursor_token, block_number) VALUES (0, $1, $2)
		ON CONFLICT (id) DO UPDATE SET cursor_token = EXCLUDED.cursor_token, block_number = EXCLUDED.block_number
	`, cp.Token, cp.BlockNumber)
	return err
}
