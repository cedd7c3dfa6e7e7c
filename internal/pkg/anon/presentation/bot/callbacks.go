package bot

import (
	"context"
	"errors"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
)

func (d *Dispatcher) onCallback(ctx context.Context, cb *msgport.Callback) {
	act, ok := anon.ParseAction(cb.Data)
	if !ok {
		d.answer(ctx, cb, i18n.T(d.lang(ctx, cb.From), "callback_unknown"))
		return
	}
	d.answer(ctx, cb, "")

	from := cb.From
	switch act.Kind {
	case anon.ActionReply:
		d.enterReply(ctx, from, act.ID)
	case anon.ActionReveal:
		d.reveal(ctx, from, act.ID)
	case anon.ActionAsk:
		d.askAgain(ctx, from, act.ID)
	case anon.ActionCancelReply:
		d.cancelReply(ctx, from)
	case anon.ActionLang:
		d.setLang(ctx, from, act.Arg)
	case anon.ActionMenu:
		d.onMenu(ctx, from, act.Arg)
	}
}

func (d *Dispatcher) answer(ctx context.Context, cb *msgport.Callback, text string) {
	if err := d.messenger.AnswerCallback(ctx, cb.ID, text); err != nil {
		d.logger.Debug("answer_callback_failed", "callback_id", cb.ID, "err", err)
	}
}

func (d *Dispatcher) enterReply(ctx context.Context, from msgport.Sender, anonID int64) {
	err := d.uc.Reply.Execute(ctx, usecase.EnterReplyModeInput{OwnerID: from.ID, AnonID: anonID})
	switch {
	case errors.Is(err, anon.ErrReplyNotAllowed):
		d.say(ctx, from, "reply_not_allowed")
	case err != nil:
		d.logger.Error("enter_reply_failed", "owner_id", from.ID, "anon_id", anonID, "err", err)
		d.say(ctx, from, "error_generic")
	default:
		lang := d.lang(ctx, from)
		d.send(ctx, from.ID, i18n.T(lang, "reply_mode_on"), cancelReplyMarkup(lang))
	}
}

func (d *Dispatcher) askAgain(ctx context.Context, from msgport.Sender, ownerID int64) {
	err := d.uc.AskAgain.Execute(ctx, usecase.AskAgainInput{AnonID: from.ID, OwnerID: ownerID, AnonLang: from.LanguageCode})
	switch {
	case errors.Is(err, anon.ErrSelfPairing):
		d.say(ctx, from, "cannot_self_message")
	case err != nil:
		d.logger.Error("ask_again_failed", "anon_id", from.ID, "owner_id", ownerID, "err", err)
		d.say(ctx, from, "start_session_save_error")
	}
}

func (d *Dispatcher) setLang(ctx context.Context, from msgport.Sender, code string) {
	err := d.uc.SetLang.Execute(ctx, usecase.SetLanguageInput{UserID: from.ID, Lang: code})
	switch {
	case errors.Is(err, usecase.ErrUnsupportedLanguage):
		d.say(ctx, from, "callback_unknown")
	case err != nil:
		d.logger.Error("set_language_failed", "user_id", from.ID, "lang", code, "err", err)
		d.say(ctx, from, "error_generic")
	default:
		d.send(ctx, from.ID, i18n.T(code, "lang_set"), menuMarkup(code))
	}
}

func (d *Dispatcher) onMenu(ctx context.Context, from msgport.Sender, item string) {
	switch item {
	case cmdGetLink:
		d.getLink(ctx, from)
	case cmdLang:
		d.chooseLang(ctx, from)
	case cmdHelp:
		d.help(ctx, from)
	case cmdPaySupport:
		d.paySupport(ctx, from)
	default:
		d.menu(ctx, from)
	}
}
