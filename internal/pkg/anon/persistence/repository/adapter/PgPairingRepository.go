package adapter

import (
	"context"
	"errors"
	"time"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgPairingRepository relies on the primary keys of anon.sessions and
// anon.reply_states for the one-per-anon and one-per-owner rules.
type PgPairingRepository struct {
	pool *pgxpool.Pool
}

func NewPgPairingRepository(pool *pgxpool.Pool) *PgPairingRepository {
	return &PgPairingRepository{pool: pool}
}

var _ repository.PairingRepository = (*PgPairingRepository)(nil)

func (r *PgPairingRepository) UpsertSession(ctx context.Context, s anon.Session) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO anon.sessions (anon_id, owner_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (anon_id)
		DO UPDATE SET owner_id = EXCLUDED.owner_id, created_at = now()
	`, s.AnonID, s.OwnerID)
	return err
}

func (r *PgPairingRepository) GetSession(ctx context.Context, anonID int64) (*anon.Session, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	var s anon.Session
	err := r.pool.QueryRow(ctx,
		"SELECT anon_id, owner_id FROM anon.sessions WHERE anon_id = $1", anonID,
	).Scan(&s.AnonID, &s.OwnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgPairingRepository) DeleteSession(ctx context.Context, anonID int64) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	ct, err := r.pool.Exec(ctx, "DELETE FROM anon.sessions WHERE anon_id = $1", anonID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PgPairingRepository) UpsertReplyState(ctx context.Context, s anon.ReplyState) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO anon.reply_states (owner_id, anon_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id)
		DO UPDATE SET anon_id = EXCLUDED.anon_id, created_at = EXCLUDED.created_at
	`, s.OwnerID, s.AnonID, s.CreatedAt)
	return err
}

func (r *PgPairingRepository) GetReplyState(ctx context.Context, ownerID int64) (*anon.ReplyState, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	var s anon.ReplyState
	err := r.pool.QueryRow(ctx,
		"SELECT owner_id, anon_id, created_at FROM anon.reply_states WHERE owner_id = $1", ownerID,
	).Scan(&s.OwnerID, &s.AnonID, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgPairingRepository) DeleteReplyState(ctx context.Context, ownerID int64) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	ct, err := r.pool.Exec(ctx, "DELETE FROM anon.reply_states WHERE owner_id = $1", ownerID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PgPairingRepository) DeleteReplyStatesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	ct, err := r.pool.Exec(ctx, "DELETE FROM anon.reply_states WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
