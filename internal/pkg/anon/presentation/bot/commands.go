package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
)

const (
	cmdStart      = "start"
	cmdGetLink    = "getlink"
	cmdLang       = "lang"
	cmdCancel     = "cancel"
	cmdHelp       = "help"
	cmdMenu       = "menu"
	cmdPaySupport = "paysupport"
)

const revealStartPrefix = "reveal_"

// parseCommand splits "/start@bot arg" into ("start", "arg").
func parseCommand(text string) (string, string) {
	head, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	name, _, _ := strings.Cut(head, "@")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (d *Dispatcher) onCommand(ctx context.Context, from msgport.Sender, name, arg string) {
	switch name {
	case cmdStart:
		d.start(ctx, from, arg)
	case cmdGetLink:
		d.getLink(ctx, from)
	case cmdLang:
		d.chooseLang(ctx, from)
	case cmdCancel:
		d.cancelReply(ctx, from)
	case cmdMenu:
		d.menu(ctx, from)
	case cmdPaySupport:
		d.paySupport(ctx, from)
	default:
		d.help(ctx, from)
	}
}

func (d *Dispatcher) start(ctx context.Context, from msgport.Sender, arg string) {
	if arg == "" {
		rt, err := d.uc.Resolve.Execute(ctx, usecase.ResolveRecipientInput{SenderID: from.ID})
		if err == nil && rt.Role == anon.RoleAnonAsking {
			d.say(ctx, from, "start_active_session")
			return
		}
		d.menu(ctx, from)
		return
	}

	if rest, ok := strings.CutPrefix(arg, revealStartPrefix); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			d.say(ctx, from, "reveal_invalid_param")
			return
		}
		d.reveal(ctx, from, id)
		return
	}

	ownerID, ok := anon.ParseStartParam(arg)
	if !ok {
		d.say(ctx, from, "start_wrong_param")
		return
	}
	if ownerID == from.ID {
		d.say(ctx, from, "start_owner_self")
		d.getLink(ctx, from)
		return
	}
	if err := d.uc.Join.Execute(ctx, usecase.JoinAsAnonInput{AnonID: from.ID, OwnerID: ownerID}); err != nil {
		d.logger.Error("join_failed", "anon_id", from.ID, "owner_id", ownerID, "err", err)
		d.say(ctx, from, "start_session_save_error")
		return
	}
	d.logger.Info("anon_joined", "anon_id", from.ID, "owner_id", ownerID)
	d.say(ctx, from, "start_joined")
	d.send(ctx, ownerID, i18n.T(d.locale.Resolve(ctx, ownerID, ""), "start_owner_notified"), nil)
}

// InviteLink is the deep link that pairs a visitor with ownerID.
func InviteLink(botUsername string, ownerID int64) string {
	return "https://t.me/" + botUsername + "?start=" + anon.StartParam(ownerID)
}

func (d *Dispatcher) getLink(ctx context.Context, from msgport.Sender) {
	d.say(ctx, from, "cmd_getlink", "link", InviteLink(d.opts.BotUsername, from.ID))
}

func (d *Dispatcher) menu(ctx context.Context, from msgport.Sender) {
	lang := d.lang(ctx, from)
	text := i18n.T(lang, "welcome_main") + "\n\n" + i18n.T(lang, "cmd_getlink", "link", InviteLink(d.opts.BotUsername, from.ID))
	d.send(ctx, from.ID, text, menuMarkup(lang))
}

func (d *Dispatcher) help(ctx context.Context, from msgport.Sender) {
	lang := d.lang(ctx, from)
	d.send(ctx, from.ID, i18n.T(lang, "help_text"), backMarkup(lang))
}

func (d *Dispatcher) chooseLang(ctx context.Context, from msgport.Sender) {
	d.send(ctx, from.ID, i18n.T(d.lang(ctx, from), "lang_choose"), langMarkup())
}

func (d *Dispatcher) paySupport(ctx context.Context, from msgport.Sender) {
	if d.opts.PaySupport != "" {
		d.send(ctx, from.ID, d.opts.PaySupport, nil)
		return
	}
	d.say(ctx, from, "pay_support_default")
}

func (d *Dispatcher) cancelReply(ctx context.Context, from msgport.Sender) {
	cancelled, err := d.uc.Cancel.Execute(ctx, from.ID)
	if err != nil {
		d.logger.Error("cancel_reply_failed", "owner_id", from.ID, "err", err)
		d.say(ctx, from, "error_generic")
		return
	}
	if cancelled {
		d.say(ctx, from, "cancel_reply_done")
		return
	}
	d.say(ctx, from, "cancel_reply_none")
}

func (d *Dispatcher) reveal(ctx context.Context, from msgport.Sender, messageID int64) {
	out, err := d.uc.Reveal.Execute(ctx, usecase.RequestRevealInput{OwnerID: from.ID, MessageID: messageID})
	switch {
	case errors.Is(err, anon.ErrMessageNotFound):
		d.say(ctx, from, "message_not_found")
	case errors.Is(err, anon.ErrNotRecipient):
		d.say(ctx, from, "payment_not_allowed")
	case err != nil:
		d.logger.Error("reveal_request_failed", "owner_id", from.ID, "message_id", messageID, "err", err)
		d.say(ctx, from, "error_generic")
	default:
		d.logger.Info("reveal_requested", "owner_id", from.ID, "message_id", messageID, "outcome", string(out))
	}
}
