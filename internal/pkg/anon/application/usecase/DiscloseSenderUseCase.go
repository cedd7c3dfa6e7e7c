package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type DiscloseSenderInput struct {
	OwnerID int64
	Message anon.Message
}

// DiscloseSenderUseCase tells an owner who sent a message.
type DiscloseSenderUseCase struct {
	Users     repository.UserRepository
	Messenger msgport.Messenger
	Locale    LocaleResolver
	Logger    *slog.Logger
}

func NewDiscloseSenderUseCase(users repository.UserRepository, m msgport.Messenger, locale LocaleResolver, logger *slog.Logger) *DiscloseSenderUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscloseSenderUseCase{Users: users, Messenger: m, Locale: locale, Logger: logger}
}

// Execute sends the disclosure with a reply button. A sender missing from the
// identity cache is disclosed by id alone.
func (uc *DiscloseSenderUseCase) Execute(ctx context.Context, in DiscloseSenderInput) error {
	sender := anon.User{ID: in.Message.Sender}
	u, err := uc.Users.GetUser(ctx, in.Message.Sender)
	switch {
	case err == nil:
		sender = *u
	case !errors.Is(err, repository.ErrNotFound):
		uc.Logger.Warn("disclose_user_lookup_failed", "user_id", in.Message.Sender, "err", err)
	}

	lang := uc.Locale.Resolve(ctx, in.OwnerID, "")
	text := DisclosureText(lang, sender)
	markup := msgport.Markup{{
		{Text: i18n.T(lang, "btn_reply"), CallbackData: anon.ReplyAction(sender.ID).Encode()},
	}}

	ctx, cancel := context.WithTimeout(ctx, DefaultSendTimeout)
	defer cancel()
	_, err = uc.Messenger.SendText(ctx, in.OwnerID, text, nil, markup)
	return err
}

// DisclosureText renders the identity lines, skipping empty fields.
func DisclosureText(lang string, u anon.User) string {
	lines := []string{
		i18n.T(lang, "reveal_opened_title"),
		i18n.T(lang, "reveal_opened_id", "id", strconv.FormatInt(u.ID, 10)),
	}
	if name := u.FullName(); name != "" {
		lines = append(lines, i18n.T(lang, "reveal_opened_name", "name", name))
	}
	if u.Username != "" {
		lines = append(lines, i18n.T(lang, "reveal_opened_username", "username", "@"+u.Username))
	}
	return strings.Join(lines, "\n")
}
