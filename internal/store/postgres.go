package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/simonjohansson/jobboard/internal/model"
)

// PostgresStore mirrors board snapshots into Postgres. Every save appends a row so
// older boards stay available; loads read the newest one.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS board_snapshots (
  id BIGSERIAL PRIMARY KEY,
  version INTEGER NOT NULL,
  card_count INTEGER NOT NULL,
  payload JSONB NOT NULL,
  saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	if err != nil {
		return fmt.Errorf("failed to migrate board_snapshots: %w", err)
	}
	return nil
}

func (p *PostgresStore) LoadBoard(ctx context.Context) (model.Board, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM board_snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, os.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load board snapshot: %w", err)
	}
	return DecodeSnapshot(payload)
}

func (p *PostgresStore) SaveBoard(ctx context.Context, b model.Board) error {
	savedAt := timeNow()
	payload, err := EncodeSnapshot(b, savedAt)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO board_snapshots (version, card_count, payload, saved_at) VALUES ($1, $2, $3, $4)`,
		model.SnapshotVersion, b.CardCount(), payload, savedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save board snapshot: %w", err)
	}
	return nil
}

// Prune keeps the newest keep snapshots.
func (p *PostgresStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	tag, err := p.pool.Exec(ctx, `
DELETE FROM board_snapshots
WHERE id NOT IN (SELECT id FROM board_snapshots ORDER BY id DESC LIMIT $1)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune board snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
