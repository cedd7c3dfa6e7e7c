package repository

import (
	"context"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
)

// ChangeOp is the kind of write observed on the messages store.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
)

// Changed field names reported on updates.
const (
	FieldSenderReaction    = "sender_reaction"
	FieldRecipientReaction = "recipient_reaction"
	FieldReactions         = "reactions"
	FieldDelivered         = "delivered"
	FieldReveal            = "reveal"
)

// Change is one observed write with the message as it looks after the write.
type Change struct {
	Op      ChangeOp
	Message anon.Message
	Fields  []string
}

// TouchesReactions reports whether an update changed a reaction slot.
func (c Change) TouchesReactions() bool {
	for _, f := range c.Fields {
		switch f {
		case FieldSenderReaction, FieldRecipientReaction, FieldReactions:
			return true
		}
	}
	return false
}

// Subscription yields changes until closed or broken.
type Subscription interface {
	// Next blocks for the next change. Any error means the subscription is dead.
	Next(ctx context.Context) (Change, error)
	Close() error
}

// ChangeStream opens push subscriptions on the messages store.
type ChangeStream interface {
	Subscribe(ctx context.Context) (Subscription, error)
}
