package usecase

import (
	"context"
	"fmt"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type GetRoomMessagesInput struct {
	RoomKey string
	Before  int64
	Limit   int
}

// GetRoomMessagesUseCase pages one room's history, newest first.
type GetRoomMessagesUseCase struct {
	Messages repository.MessageRepository
}

func NewGetRoomMessagesUseCase(messages repository.MessageRepository) *GetRoomMessagesUseCase {
	return &GetRoomMessagesUseCase{Messages: messages}
}

func (uc *GetRoomMessagesUseCase) Execute(ctx context.Context, in GetRoomMessagesInput) ([]anon.Message, error) {
	if _, _, err := anon.ParseRoomKey(in.RoomKey); err != nil {
		return nil, err
	}
	msgs, err := uc.Messages.ListRoomMessages(ctx, in.RoomKey, in.Before, clampLimit(in.Limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
