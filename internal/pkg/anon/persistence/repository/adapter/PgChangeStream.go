package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotifyChannel is the channel the messages_notify trigger publishes on.
const NotifyChannel = "anon_messages"

// PgChangeStream turns LISTEN/NOTIFY on anon.messages into repository changes.
// Each subscription holds its own connection outside the pool.
type PgChangeStream struct {
	pool     *pgxpool.Pool
	messages *PgMessageRepository
}

func NewPgChangeStream(pool *pgxpool.Pool) *PgChangeStream {
	return &PgChangeStream{pool: pool, messages: NewPgMessageRepository(pool)}
}

var _ repository.ChangeStream = (*PgChangeStream)(nil)

type notifyPayload struct {
	Op     string   `json:"op"`
	ID     int64    `json:"id"`
	Fields []string `json:"fields"`
}

func (s *PgChangeStream) Subscribe(ctx context.Context) (repository.Subscription, error) {
	if s == nil || s.pool == nil {
		return nil, errNilPool
	}
	conn, err := pgx.ConnectConfig(ctx, s.pool.Config().ConnConfig.Copy())
	if err != nil {
		return nil, fmt.Errorf("listen connect: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen: %w", err)
	}
	return &pgSubscription{conn: conn, messages: s.messages}, nil
}

type pgSubscription struct {
	conn     *pgx.Conn
	messages *PgMessageRepository
}

func (s *pgSubscription) Next(ctx context.Context) (repository.Change, error) {
	for {
		n, err := s.conn.WaitForNotification(ctx)
		if err != nil {
			return repository.Change{}, err
		}
		var p notifyPayload
		if err := json.Unmarshal([]byte(n.Payload), &p); err != nil || p.ID <= 0 {
			continue
		}
		m, err := s.messages.GetMessage(ctx, p.ID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return repository.Change{}, err
		}
		op := repository.ChangeUpdate
		if p.Op == string(repository.ChangeInsert) {
			op = repository.ChangeInsert
		}
		return repository.Change{Op: op, Message: *m, Fields: p.Fields}, nil
	}
}

func (s *pgSubscription) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.conn.Close(ctx)
}
