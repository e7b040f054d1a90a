package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
)

// Store is a batch.Store over the batches and batch_contents tables.
type Store struct {
	pool *pgxpool.Pool
}

var _ batch.Store = (*Store)(nil)

// NewStore creates a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const upsertContentSQL = `
INSERT INTO batch_contents (account_id, batch_id, content_type, compression, value, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (account_id, batch_id) DO UPDATE
SET content_type = EXCLUDED.content_type,
    compression  = EXCLUDED.compression,
    value        = EXCLUDED.value,
    updated_at   = EXCLUDED.updated_at`

const updateStateSQL = `
UPDATE batches
SET status = $3, state = $4, updated_at = $5, version = version + 1
WHERE account_id = $1 AND id = $2 AND version = $6`

// Create implements batch.Store.
func (s *Store) Create(ctx context.Context, b *domain.Batch, content codec.Content) error {
	state, err := domain.MarshalState(b.State)
	if err != nil {
		return err
	}
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertContentSQL,
			b.AccountID, b.ID, content.Type, string(content.Compression), content.Value); err != nil {
			return fmt.Errorf("write content: %w", err)
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO batches (account_id, id, status, state, version, updated_at)
			VALUES ($1, $2, $3, $4, 1, $5)
			ON CONFLICT (account_id, id) DO NOTHING`,
			b.AccountID, b.ID, string(b.State.Status()), state, b.State.At())
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("batch %s: %w", b.ID, apperrors.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create batch %s: %w", b.ID, err)
	}
	b.Version = 1
	return nil
}

// Get implements batch.Store.
func (s *Store) Get(ctx context.Context, accountID, id string) (*domain.Batch, error) {
	var (
		raw     []byte
		version int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT state, version FROM batches WHERE account_id = $1 AND id = $2`,
		accountID, id).Scan(&raw, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", id, err)
	}
	state, err := domain.UnmarshalState(raw)
	if err != nil {
		return nil, err
	}
	return &domain.Batch{ID: id, AccountID: accountID, State: state, Version: version}, nil
}

// Update implements batch.Store.
func (s *Store) Update(ctx context.Context, b *domain.Batch) error {
	return s.write(ctx, b, nil)
}

// ReplaceContent implements batch.Store.
func (s *Store) ReplaceContent(ctx context.Context, b *domain.Batch, content codec.Content) error {
	return s.write(ctx, b, &content)
}

func (s *Store) write(ctx context.Context, b *domain.Batch, content *codec.Content) error {
	state, err := domain.MarshalState(b.State)
	if err != nil {
		return err
	}
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if content != nil {
			if _, err := tx.Exec(ctx, upsertContentSQL,
				b.AccountID, b.ID, content.Type, string(content.Compression), content.Value); err != nil {
				return fmt.Errorf("write content: %w", err)
			}
		}
		tag, err := tx.Exec(ctx, updateStateSQL,
			b.AccountID, b.ID, string(b.State.Status()), state, b.State.At(), b.Version)
		if err != nil {
			return fmt.Errorf("update state: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return nil
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM batches WHERE account_id = $1 AND id = $2)`,
			b.AccountID, b.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("batch %s: %w", b.ID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("batch %s at version %d: %w", b.ID, b.Version, apperrors.ErrVersionConflict)
	})
	if err != nil {
		return err
	}
	b.Version++
	return nil
}

// Content implements batch.Store.
func (s *Store) Content(ctx context.Context, accountID, id string) (codec.Content, error) {
	var (
		c           codec.Content
		compression string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT content_type, compression, value
		FROM batch_contents WHERE account_id = $1 AND batch_id = $2`,
		accountID, id).Scan(&c.Type, &compression, &c.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return codec.Content{}, fmt.Errorf("content of batch %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return codec.Content{}, fmt.Errorf("get content of batch %s: %w", id, err)
	}
	if c.Compression, err = codec.ParseCompression(compression); err != nil {
		return codec.Content{}, err
	}
	return c, nil
}

// ListStale implements batch.Store.
func (s *Store) ListStale(ctx context.Context, statuses []domain.BatchStatus, cutoff time.Time, limit int) ([]*domain.Batch, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT account_id, id, state, version FROM batches
		WHERE status = ANY($1) AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3`, names, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale batches: %w", err)
	}
	defer rows.Close()

	var out []*domain.Batch
	for rows.Next() {
		var (
			b   domain.Batch
			raw []byte
		)
		if err := rows.Scan(&b.AccountID, &b.ID, &raw, &b.Version); err != nil {
			return nil, err
		}
		if b.State, err = domain.UnmarshalState(raw); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
