package usecase

import (
	"context"
	"log/slog"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type AskAgainInput struct {
	AnonID   int64
	OwnerID  int64
	AnonLang string
}

// AskAgainUseCase re-pairs an anon with the owner who just answered them.
type AskAgainUseCase struct {
	Join      *JoinAsAnonUseCase
	Messenger msgport.Messenger
	Locale    LocaleResolver
	Logger    *slog.Logger
}

func NewAskAgainUseCase(pairs repository.PairingRepository, m msgport.Messenger, locale LocaleResolver, logger *slog.Logger) *AskAgainUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AskAgainUseCase{Join: NewJoinAsAnonUseCase(pairs), Messenger: m, Locale: locale, Logger: logger}
}

// Execute stores the Session, prompts the anon and lets the owner know.
// Repeated taps are harmless: the Session is keyed by anon.
func (uc *AskAgainUseCase) Execute(ctx context.Context, in AskAgainInput) error {
	if err := uc.Join.Execute(ctx, JoinAsAnonInput{AnonID: in.AnonID, OwnerID: in.OwnerID}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultSendTimeout)
	defer cancel()
	anonLang := uc.Locale.Resolve(ctx, in.AnonID, in.AnonLang)
	if _, err := uc.Messenger.SendText(ctx, in.AnonID, i18n.T(anonLang, "ask_again_ready"), nil, nil); err != nil {
		uc.Logger.Warn("ask_again_prompt_failed", "anon_id", in.AnonID, "err", err)
	}
	ownerLang := uc.Locale.Resolve(ctx, in.OwnerID, "")
	if _, err := uc.Messenger.SendText(ctx, in.OwnerID, i18n.T(ownerLang, "ask_owner_notify"), nil, nil); err != nil {
		uc.Logger.Warn("ask_again_notify_failed", "owner_id", in.OwnerID, "err", err)
	}
	return nil
}
