package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maasra-erp/maasra/internal/platform/db"
)

const schema = `CREATE TABLE IF NOT EXISTS ledger_snapshots (
	version BIGINT PRIMARY KEY,
	document JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRepository keeps snapshots in the ledger_snapshots table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the snapshot table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("snapshot: ensure schema: %w", err)
	}
	return nil
}

// Save inserts a snapshot. Versions are unique.
func (r *PostgresRepository) Save(ctx context.Context, snap Snapshot) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO ledger_snapshots (version, document, created_at) VALUES ($1, $2, $3)`,
		snap.Version, []byte(snap.Document), snap.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %d", ErrVersionExists, snap.Version)
		}
		return fmt.Errorf("snapshot: save: %w", err)
	}
	return nil
}

// Latest returns the highest stored version.
func (r *PostgresRepository) Latest(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		raw  []byte
	)
	err := r.pool.QueryRow(ctx, `SELECT version, document, created_at FROM ledger_snapshots ORDER BY version DESC LIMIT 1`).
		Scan(&snap.Version, &raw, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: latest: %w", err)
	}
	snap.Document = raw
	return snap, nil
}

// Prune keeps the newest keep snapshots and deletes the rest.
func (r *PostgresRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	var deleted int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var cutoff int64
		err := tx.QueryRow(ctx, `SELECT version FROM ledger_snapshots ORDER BY version DESC OFFSET $1 LIMIT 1`, keep-1).Scan(&cutoff)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM ledger_snapshots WHERE version < $1`, cutoff)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("snapshot: prune: %w", err)
	}
	return deleted, nil
}
