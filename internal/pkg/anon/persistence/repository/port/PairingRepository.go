package repository

import (
	"context"
	"time"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
)

// PairingRepository stores Sessions (keyed by anon) and ReplyStates (keyed by owner).
// Both keys are unique in the store; upserts replace, deletes are delete-if-exists.
type PairingRepository interface {
	UpsertSession(ctx context.Context, s anon.Session) error
	GetSession(ctx context.Context, anonID int64) (*anon.Session, error)
	DeleteSession(ctx context.Context, anonID int64) (bool, error)

	UpsertReplyState(ctx context.Context, r anon.ReplyState) error
	GetReplyState(ctx context.Context, ownerID int64) (*anon.ReplyState, error)
	DeleteReplyState(ctx context.Context, ownerID int64) (bool, error)
	// DeleteReplyStatesBefore removes states created before cutoff and returns how many went.
	DeleteReplyStatesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
