package postgres

import (
	"context"
	"database/sql"

	"github.com/entities-sink/ksink/internal/store"
)

type spaceOps struct {
	tx *sql.Tx
}

var _ store.SpaceOps = spaceOps{}

func (s spaceOps) Create(ctx context.Context, id, address, createdIn string, isRootSpace bool) error {
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO spaces (id, address, created_in, is_root_space) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
		id, address, createdIn, isRootSpace)
	return err
}

func (s spaceOps) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM spaces WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (s spaceOps) IsRootSpace(ctx context.Context, id string) (bool, error) {
	var isRoot bool
	err := s.tx.QueryRowContext(ctx, `SELECT is_root_space FROM spaces WHERE id = $1`, id).Scan(&isRoot)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return isRoot, err
}

func (s spaceOps) AddSubspace(ctx context.Context, parent, child string) error {
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO subspaces (parent_space, child_space) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		parent, child)
	return err
}

func (s spaceOps) RemoveSubspace(ctx context.Context, parent, child string) error {
	_, err := s.tx.ExecContext(ctx,
		`DELETE FROM subspaces WHERE parent_space = $1 AND child_space = $2`, parent, child)
	return err
}

func (s spaceOps) CreateSchema(ctx context.Context, name string) error {
	return createSpaceSchema(ctx, s.tx, name)
}

func (s spaceOps) UpsertCover(ctx context.Context, space, url string) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO spaces (id, address, created_in, cover_url) VALUES ($1, '', $1, $2)
		ON CONFLICT (id) DO UPDATE SET cover_url = EXCLUDED.cover_url
	`, space, url)
	return err
}
