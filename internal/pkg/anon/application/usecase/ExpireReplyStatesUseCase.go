package usecase

import (
	"context"
	"fmt"
	"time"

	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// ExpireReplyStatesUseCase removes reply modes that outlived their TTL.
type ExpireReplyStatesUseCase struct {
	Pairs repository.PairingRepository
	TTL   time.Duration
}

func NewExpireReplyStatesUseCase(pairs repository.PairingRepository, ttl time.Duration) *ExpireReplyStatesUseCase {
	return &ExpireReplyStatesUseCase{Pairs: pairs, TTL: ttl}
}

func (uc *ExpireReplyStatesUseCase) Execute(ctx context.Context, now time.Time) (int64, error) {
	if uc.TTL <= 0 {
		return 0, nil
	}
	n, err := uc.Pairs.DeleteReplyStatesBefore(ctx, now.Add(-uc.TTL))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return n, nil
}
