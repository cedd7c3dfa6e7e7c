package usecase

import (
	"context"
	"fmt"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type JoinAsAnonInput struct {
	AnonID  int64
	OwnerID int64
}

// JoinAsAnonUseCase binds an anon to the owner whose invite they opened.
type JoinAsAnonUseCase struct {
	Pairs repository.PairingRepository
}

func NewJoinAsAnonUseCase(pairs repository.PairingRepository) *JoinAsAnonUseCase {
	return &JoinAsAnonUseCase{Pairs: pairs}
}

// Execute upserts the Session. Any previous pairing of the anon is replaced.
func (uc *JoinAsAnonUseCase) Execute(ctx context.Context, in JoinAsAnonInput) error {
	if in.AnonID == 0 || in.OwnerID == 0 {
		return fmt.Errorf("anonId and ownerId are required")
	}
	if in.AnonID == in.OwnerID {
		return anon.ErrSelfPairing
	}
	if err := uc.Pairs.UpsertSession(ctx, anon.Session{AnonID: in.AnonID, OwnerID: in.OwnerID}); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
