package usecase

import (
	"context"
	"fmt"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type DissolvePairingInput struct {
	SenderID int64
	Role     anon.Role
}

// DissolvePairingUseCase ends the single-shot pairing a relay was made under.
type DissolvePairingUseCase struct {
	Pairs repository.PairingRepository
}

func NewDissolvePairingUseCase(pairs repository.PairingRepository) *DissolvePairingUseCase {
	return &DissolvePairingUseCase{Pairs: pairs}
}

// Execute deletes the ReplyState of a replying owner or the Session of an
// asking anon. Missing rows are not an error.
func (uc *DissolvePairingUseCase) Execute(ctx context.Context, in DissolvePairingInput) error {
	var err error
	switch in.Role {
	case anon.RoleOwnerReplying:
		_, err = uc.Pairs.DeleteReplyState(ctx, in.SenderID)
	case anon.RoleAnonAsking:
		_, err = uc.Pairs.DeleteSession(ctx, in.SenderID)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
