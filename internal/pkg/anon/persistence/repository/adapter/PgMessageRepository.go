package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// messageColumns is the projection every scanMessage call expects, in order.
const messageColumns = `id, sender, recipient, room_key, kind, text,
	origin_chat_id, origin_message_id, delivered_chat_id, delivered_message_id,
	media_file_id, media_thumb_file_id, sender_reaction, recipient_reaction,
	reveal_purchased, reveal_purchased_at, reveal_stars, reveal_charge_id, reveal_provider_charge_id,
	created_at`

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ repository.MessageRepository = (*PgMessageRepository)(nil)

func (r *PgMessageRepository) CreateMessage(ctx context.Context, m anon.Message) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO anon.messages (
			sender, recipient, room_key, kind, text,
			origin_chat_id, origin_message_id, media_file_id, media_thumb_file_id, created_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6::bigint, 0), NULLIF($7::bigint, 0), $8, $9, $10)
		RETURNING id
	`, m.Sender, m.Recipient, m.RoomKey, string(m.Kind), m.Text,
		m.Origin.ChatID, int64(m.Origin.MessageID), m.Media.FileID, m.Media.ThumbFileID, m.CreatedAt,
	).Scan(&id)
	return id, err
}

func (r *PgMessageRepository) GetMessage(ctx context.Context, id int64) (*anon.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	row := r.pool.QueryRow(ctx, "SELECT "+messageColumns+" FROM anon.messages WHERE id = $1", id)
	return scanOne(row)
}

func (r *PgMessageRepository) HasMessageFromTo(ctx context.Context, sender, recipient int64) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	var ok bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM anon.messages WHERE sender = $1 AND recipient = $2)",
		sender, recipient,
	).Scan(&ok)
	return ok, err
}

func (r *PgMessageRepository) SetDelivered(ctx context.Context, id int64, loc anon.Locator) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE anon.messages
		SET delivered_chat_id = $2, delivered_message_id = $3
		WHERE id = $1
	`, id, loc.ChatID, int64(loc.MessageID))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgMessageRepository) FindByLocator(ctx context.Context, loc anon.Locator, side anon.Side) (*anon.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	var where string
	switch side {
	case anon.SideDelivered:
		where = "delivered_chat_id = $1 AND delivered_message_id = $2"
	case anon.SideOrigin:
		where = "origin_chat_id = $1 AND origin_message_id = $2"
	default:
		return nil, fmt.Errorf("pg repository: unknown side %d", side)
	}
	row := r.pool.QueryRow(ctx,
		"SELECT "+messageColumns+" FROM anon.messages WHERE "+where+" ORDER BY id DESC LIMIT 1",
		loc.ChatID, int64(loc.MessageID))
	return scanOne(row)
}

func (r *PgMessageRepository) SetReactions(ctx context.Context, id int64, re anon.Reactions) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	combined, err := json.Marshal(re.Combined())
	if err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE anon.messages
		SET sender_reaction = $2, recipient_reaction = $3, reactions = $4::jsonb
		WHERE id = $1
	`, id, re.Origin, re.Delivered, string(combined))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgMessageRepository) MarkPurchased(ctx context.Context, id int64, p repository.PurchaseProof) (*anon.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE anon.messages
		SET reveal_purchased = TRUE,
		    reveal_purchased_at = $3,
		    reveal_stars = $4,
		    reveal_charge_id = NULLIF($5, ''),
		    reveal_provider_charge_id = $6
		WHERE id = $1 AND recipient = $2 AND reveal_purchased IS NOT TRUE
		RETURNING `+messageColumns,
		id, p.PayerID, p.At, p.Stars, p.ChargeID, p.ProviderChargeID)
	m, err := scanOne(row)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

func (r *PgMessageRepository) ListMessagesAfter(ctx context.Context, after int64, limit int) ([]anon.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx,
		"SELECT "+messageColumns+" FROM anon.messages WHERE id > $1 ORDER BY id ASC LIMIT $2",
		after, limit)
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

func (r *PgMessageRepository) MaxMessageID(ctx context.Context) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	var id int64
	err := r.pool.QueryRow(ctx, "SELECT COALESCE(MAX(id), 0) FROM anon.messages").Scan(&id)
	return id, err
}

func (r *PgMessageRepository) ListRoomMessages(ctx context.Context, roomKey string, before int64, limit int) ([]anon.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM anon.messages
		WHERE room_key = $1 AND ($2::bigint <= 0 OR id < $2)
		ORDER BY id DESC
		LIMIT $3
	`, roomKey, before, limit)
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

func (r *PgMessageRepository) LatestPerRoom(ctx context.Context, limit int) ([]anon.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM (
			SELECT DISTINCT ON (room_key) `+messageColumns+`
			FROM anon.messages
			ORDER BY room_key, id DESC
		) latest
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

func scanOne(row pgx.Row) (*anon.Message, error) {
	m, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func scanAll(rows pgx.Rows) ([]anon.Message, error) {
	defer rows.Close()
	var out []anon.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func scanMessage(row pgx.Row) (*anon.Message, error) {
	var (
		m                     anon.Message
		kind                  string
		originChat, originMsg *int64
		delivChat, delivMsg   *int64
		purchasedAt           *time.Time
		chargeID              *string
	)
	err := row.Scan(
		&m.ID, &m.Sender, &m.Recipient, &m.RoomKey, &kind, &m.Text,
		&originChat, &originMsg, &delivChat, &delivMsg,
		&m.Media.FileID, &m.Media.ThumbFileID, &m.Reactions.Origin, &m.Reactions.Delivered,
		&m.Reveal.Purchased, &purchasedAt, &m.Reveal.Stars, &chargeID, &m.Reveal.ProviderChargeID,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Kind = anon.ParseKind(kind)
	if originChat != nil && originMsg != nil {
		m.Origin = anon.Locator{ChatID: *originChat, MessageID: int(*originMsg)}
	}
	if delivChat != nil && delivMsg != nil {
		m.Delivered = anon.Locator{ChatID: *delivChat, MessageID: int(*delivMsg)}
	}
	m.Reveal.PurchasedAt = purchasedAt
	if chargeID != nil {
		m.Reveal.ChargeID = *chargeID
	}
	return &m, nil
}
