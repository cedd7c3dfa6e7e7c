package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// DefaultReplyTTL bounds how long an unused reply mode stays armed.
const DefaultReplyTTL = 15 * time.Minute

type ResolveRecipientInput struct {
	SenderID int64
}

// ResolveRecipientUseCase picks who an inbound item from SenderID goes to.
type ResolveRecipientUseCase struct {
	Pairs    repository.PairingRepository
	ReplyTTL time.Duration
	Now      Clock
}

func NewResolveRecipientUseCase(pairs repository.PairingRepository, replyTTL time.Duration) *ResolveRecipientUseCase {
	return &ResolveRecipientUseCase{Pairs: pairs, ReplyTTL: replyTTL}
}

// Execute prefers a live ReplyState (owner answering) over a Session (anon asking).
// An expired ReplyState is treated as absent.
func (uc *ResolveRecipientUseCase) Execute(ctx context.Context, in ResolveRecipientInput) (anon.Route, error) {
	if in.SenderID == 0 {
		return anon.Route{}, anon.ErrNoRoute
	}

	state, err := uc.Pairs.GetReplyState(ctx, in.SenderID)
	switch {
	case err == nil && !state.Expired(uc.Now.now(), uc.ReplyTTL):
		return anon.Route{Sender: in.SenderID, Recipient: state.AnonID, Role: anon.RoleOwnerReplying}, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return anon.Route{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	sess, err := uc.Pairs.GetSession(ctx, in.SenderID)
	switch {
	case err == nil:
		return anon.Route{Sender: in.SenderID, Recipient: sess.OwnerID, Role: anon.RoleAnonAsking}, nil
	case errors.Is(err, repository.ErrNotFound):
		return anon.Route{}, anon.ErrNoRoute
	default:
		return anon.Route{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}
