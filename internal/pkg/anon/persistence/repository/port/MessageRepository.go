package repository

import (
	"context"
	"time"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
)

// PurchaseProof carries the payment confirmation fields written onto a message.
type PurchaseProof struct {
	PayerID          int64
	Stars            int
	ChargeID         string
	ProviderChargeID string
	At               time.Time
}

// MessageRepository persists relay records.
type MessageRepository interface {
	// CreateMessage inserts m and returns the store-assigned id.
	CreateMessage(ctx context.Context, m anon.Message) (int64, error)
	GetMessage(ctx context.Context, id int64) (*anon.Message, error)
	HasMessageFromTo(ctx context.Context, sender, recipient int64) (bool, error)
	SetDelivered(ctx context.Context, id int64, loc anon.Locator) error

	// FindByLocator returns the message whose copy on the given side sits at loc.
	FindByLocator(ctx context.Context, loc anon.Locator, side anon.Side) (*anon.Message, error)
	SetReactions(ctx context.Context, id int64, r anon.Reactions) error

	// MarkPurchased flips the reveal sub-record exactly once. It filters on
	// (id, recipient = proof.PayerID, not yet purchased) and returns nil, nil
	// when no row matched.
	MarkPurchased(ctx context.Context, id int64, proof PurchaseProof) (*anon.Message, error)

	// ListMessagesAfter returns up to limit messages with id > after, ascending.
	ListMessagesAfter(ctx context.Context, after int64, limit int) ([]anon.Message, error)
	// MaxMessageID returns 0 on an empty store.
	MaxMessageID(ctx context.Context) (int64, error)
	// ListRoomMessages pages a room newest first; before <= 0 means from the top.
	ListRoomMessages(ctx context.Context, roomKey string, before int64, limit int) ([]anon.Message, error)
	// LatestPerRoom returns the newest message of each room, newest rooms first.
	LatestPerRoom(ctx context.Context, limit int) ([]anon.Message, error)
}
