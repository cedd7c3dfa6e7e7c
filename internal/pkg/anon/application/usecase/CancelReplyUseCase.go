package usecase

import (
	"context"
	"fmt"

	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// CancelReplyUseCase disarms an owner's reply mode on request.
type CancelReplyUseCase struct {
	Pairs repository.PairingRepository
}

func NewCancelReplyUseCase(pairs repository.PairingRepository) *CancelReplyUseCase {
	return &CancelReplyUseCase{Pairs: pairs}
}

// Execute reports whether a reply mode was active.
func (uc *CancelReplyUseCase) Execute(ctx context.Context, ownerID int64) (bool, error) {
	existed, err := uc.Pairs.DeleteReplyState(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return existed, nil
}
