package usecase

import (
	"context"
	"errors"
	"fmt"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type EnterReplyModeInput struct {
	OwnerID int64
	AnonID  int64
}

// EnterReplyModeUseCase arms an owner's next message to go to one anon.
type EnterReplyModeUseCase struct {
	Pairs    repository.PairingRepository
	Messages repository.MessageRepository
	Now      Clock
}

func NewEnterReplyModeUseCase(pairs repository.PairingRepository, messages repository.MessageRepository) *EnterReplyModeUseCase {
	return &EnterReplyModeUseCase{Pairs: pairs, Messages: messages}
}

// Execute requires a live Session anon->owner or, since sessions dissolve on
// delivery, at least one stored message from the anon to the owner.
func (uc *EnterReplyModeUseCase) Execute(ctx context.Context, in EnterReplyModeInput) error {
	if in.OwnerID == 0 || in.AnonID == 0 || in.OwnerID == in.AnonID {
		return anon.ErrReplyNotAllowed
	}

	allowed, err := uc.authorized(ctx, in)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !allowed {
		return anon.ErrReplyNotAllowed
	}

	state := anon.ReplyState{OwnerID: in.OwnerID, AnonID: in.AnonID, CreatedAt: uc.Now.now()}
	if err := uc.Pairs.UpsertReplyState(ctx, state); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (uc *EnterReplyModeUseCase) authorized(ctx context.Context, in EnterReplyModeInput) (bool, error) {
	sess, err := uc.Pairs.GetSession(ctx, in.AnonID)
	switch {
	case err == nil && sess.OwnerID == in.OwnerID:
		return true, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return false, err
	}
	return uc.Messages.HasMessageFromTo(ctx, in.AnonID, in.OwnerID)
}
