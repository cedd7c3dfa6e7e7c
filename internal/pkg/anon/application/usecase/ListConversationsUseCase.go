package usecase

import (
	"context"
	"fmt"
	"log/slog"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultListLimit
	case n > MaxListLimit:
		return MaxListLimit
	default:
		return n
	}
}

type ListConversationsInput struct {
	Limit int
}

// ConversationView is a summary decorated with participant display names.
type ConversationView struct {
	anon.ConversationSummary
	NameA string `json:"name_a"`
	NameB string `json:"name_b"`
}

// ListConversationsUseCase backs the dashboard's conversation list.
type ListConversationsUseCase struct {
	Summaries repository.SummaryRepository
	Messages  repository.MessageRepository
	Users     repository.UserRepository
	Now       Clock
	Logger    *slog.Logger
}

func NewListConversationsUseCase(s repository.SummaryRepository, m repository.MessageRepository, u repository.UserRepository, logger *slog.Logger) *ListConversationsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListConversationsUseCase{Summaries: s, Messages: m, Users: u, Logger: logger}
}

// Execute returns the newest rooms first. An empty projection is rebuilt from
// the latest message of each room.
func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]ConversationView, error) {
	limit := clampLimit(in.Limit)
	sums, err := uc.Summaries.ListSummaries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if len(sums) == 0 {
		if sums, err = uc.seed(ctx, limit); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	ids := make([]int64, 0, 2*len(sums))
	for _, s := range sums {
		ids = append(ids, s.UserA, s.UserB)
	}
	users, err := uc.Users.GetUsers(ctx, ids)
	if err != nil {
		uc.Logger.Warn("conversations_names_failed", "err", err)
		users = map[int64]anon.User{}
	}

	out := make([]ConversationView, len(sums))
	for i, s := range sums {
		out[i] = ConversationView{
			ConversationSummary: s,
			NameA:               displayName(users, s.UserA),
			NameB:               displayName(users, s.UserB),
		}
	}
	return out, nil
}

func (uc *ListConversationsUseCase) seed(ctx context.Context, limit int) ([]anon.ConversationSummary, error) {
	latest, err := uc.Messages.LatestPerRoom(ctx, limit)
	if err != nil {
		return nil, err
	}
	now := uc.Now.now()
	out := make([]anon.ConversationSummary, 0, len(latest))
	for _, m := range latest {
		s := anon.SummaryOf(m, now)
		if _, err := uc.Summaries.UpsertSummaryIfNewer(ctx, s); err != nil {
			uc.Logger.Warn("conversations_seed_failed", "room_key", s.RoomKey, "err", err)
		}
		out = append(out, s)
	}
	return out, nil
}

func displayName(users map[int64]anon.User, id int64) string {
	if u, ok := users[id]; ok {
		return u.DisplayName()
	}
	return anon.User{ID: id}.DisplayName()
}
