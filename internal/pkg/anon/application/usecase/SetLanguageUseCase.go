package usecase

import (
	"context"
	"fmt"

	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type SetLanguageInput struct {
	UserID int64
	Lang   string
}

// LocaleMemory is the write side of the locale cache.
type LocaleMemory interface {
	Remember(ctx context.Context, userID int64, lang string)
}

// SetLanguageUseCase records an explicit language choice.
type SetLanguageUseCase struct {
	Users  repository.UserRepository
	Locale LocaleMemory
}

func NewSetLanguageUseCase(users repository.UserRepository, locale LocaleMemory) *SetLanguageUseCase {
	return &SetLanguageUseCase{Users: users, Locale: locale}
}

func (uc *SetLanguageUseCase) Execute(ctx context.Context, in SetLanguageInput) error {
	if !i18n.IsSupported(in.Lang) {
		return ErrUnsupportedLanguage
	}
	if err := uc.Users.SetUserLang(ctx, in.UserID, in.Lang); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	uc.Locale.Remember(ctx, in.UserID, in.Lang)
	return nil
}
