package usecase

import (
	"context"
	"fmt"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// RecordUserUseCase refreshes the identity cache on every inbound interaction.
type RecordUserUseCase struct {
	Users repository.UserRepository
}

func NewRecordUserUseCase(users repository.UserRepository) *RecordUserUseCase {
	return &RecordUserUseCase{Users: users}
}

func (uc *RecordUserUseCase) Execute(ctx context.Context, u anon.User) error {
	if u.ID == 0 {
		return fmt.Errorf("user id is required")
	}
	if err := uc.Users.UpsertUser(ctx, u); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
