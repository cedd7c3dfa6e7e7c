package adapter

import (
	"context"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PgSummaryRepository struct {
	pool *pgxpool.Pool
}

func NewPgSummaryRepository(pool *pgxpool.Pool) *PgSummaryRepository {
	return &PgSummaryRepository{pool: pool}
}

var _ repository.SummaryRepository = (*PgSummaryRepository)(nil)

func (r *PgSummaryRepository) UpsertSummaryIfNewer(ctx context.Context, s anon.ConversationSummary) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	// The WHERE on the conflict branch keeps the row monotonic on message id.
	ct, err := r.pool.Exec(ctx, `
		INSERT INTO anon.conversation_summaries (
			room_key, user_a, user_b, last_message_id, last_message_at,
			last_message_text, last_kind, last_sender, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (room_key) DO UPDATE SET
			last_message_id = EXCLUDED.last_message_id,
			last_message_at = EXCLUDED.last_message_at,
			last_message_text = EXCLUDED.last_message_text,
			last_kind = EXCLUDED.last_kind,
			last_sender = EXCLUDED.last_sender,
			updated_at = EXCLUDED.updated_at
		WHERE anon.conversation_summaries.last_message_id < EXCLUDED.last_message_id
	`, s.RoomKey, s.UserA, s.UserB, s.LastMessageID, s.LastMessageAt,
		s.LastMessageText, string(s.LastKind), s.LastSender, s.UpdatedAt)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PgSummaryRepository) ListSummaries(ctx context.Context, limit int) ([]anon.ConversationSummary, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT room_key, user_a, user_b, last_message_id, last_message_at,
		       last_message_text, last_kind, last_sender, updated_at
		FROM anon.conversation_summaries
		ORDER BY last_message_at DESC, last_message_id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []anon.ConversationSummary
	for rows.Next() {
		var (
			s    anon.ConversationSummary
			kind string
		)
		if err := rows.Scan(&s.RoomKey, &s.UserA, &s.UserB, &s.LastMessageID, &s.LastMessageAt,
			&s.LastMessageText, &kind, &s.LastSender, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.LastKind = anon.ParseKind(kind)
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
