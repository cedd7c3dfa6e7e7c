// Package bot turns inbound messaging events into use case calls.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/metrics"
	qport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/queue/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/guard"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// Locale resolves and remembers a user's interface language.
type Locale interface {
	usecase.LocaleResolver
	usecase.LocaleMemory
}

// UseCases groups everything the dispatcher drives.
type UseCases struct {
	Record   *usecase.RecordUserUseCase
	Join     *usecase.JoinAsAnonUseCase
	Reply    *usecase.EnterReplyModeUseCase
	Resolve  *usecase.ResolveRecipientUseCase
	Relay    *usecase.RelayMessageUseCase
	Cancel   *usecase.CancelReplyUseCase
	Reveal   *usecase.RequestRevealUseCase
	AskAgain *usecase.AskAgainUseCase
	SetLang  *usecase.SetLanguageUseCase
	Mirror   *usecase.MirrorReactionUseCase
}

type Options struct {
	// BotUsername builds invite links (t.me/<name>?start=owner_<id>).
	BotUsername string
	RevealStars int
	// PaySupport overrides the /paysupport text.
	PaySupport string
	// HandleTimeout bounds the work done for one inbound event.
	HandleTimeout time.Duration
}

const defaultHandleTimeout = 60 * time.Second

// Dispatcher is safe for concurrent use; every event is handled independently.
type Dispatcher struct {
	uc        UseCases
	messenger msgport.Messenger
	messages  repository.MessageRepository
	queue     qport.Client
	guard     *guard.SpamGuard
	locale    Locale
	opts      Options
	now       func() time.Time
	logger    *slog.Logger
}

func NewDispatcher(
	uc UseCases,
	m msgport.Messenger,
	messages repository.MessageRepository,
	queue qport.Client,
	g *guard.SpamGuard,
	locale Locale,
	opts Options,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HandleTimeout <= 0 {
		opts.HandleTimeout = defaultHandleTimeout
	}
	return &Dispatcher{
		uc:        uc,
		messenger: m,
		messages:  messages,
		queue:     queue,
		guard:     g,
		locale:    locale,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// Handle is a msgport.EventHandler. A panic in one event is logged and contained.
func (d *Dispatcher) Handle(ctx context.Context, ev msgport.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("update_panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.opts.HandleTimeout)
	defer cancel()

	switch {
	case ev.Message != nil:
		d.record(ctx, ev.Message.From)
		d.onMessage(ctx, ev.Message)
	case ev.Callback != nil:
		d.record(ctx, ev.Callback.From)
		d.onCallback(ctx, ev.Callback)
	case ev.Reaction != nil:
		d.onReaction(ctx, ev.Reaction)
	case ev.PreCheckout != nil:
		d.record(ctx, ev.PreCheckout.From)
		d.onPreCheckout(ctx, ev.PreCheckout)
	}
}

func (d *Dispatcher) record(ctx context.Context, s msgport.Sender) {
	if s.ID == 0 || s.IsBot {
		return
	}
	if err := d.uc.Record.Execute(ctx, userOf(s)); err != nil {
		d.logger.Warn("record_user_failed", "user_id", s.ID, "err", err)
	}
}

func (d *Dispatcher) onMessage(ctx context.Context, m *msgport.InboundMessage) {
	if m.From.ID == 0 || m.From.IsBot {
		return
	}
	if m.Payment != nil {
		d.onPayment(ctx, m)
		return
	}
	c := contentOf(m)
	if c.IsCommand() {
		name, arg := parseCommand(c.Text)
		d.onCommand(ctx, m.From, name, arg)
		return
	}
	d.relay(ctx, m.From, c)
}

// relay runs guard, route resolution and the relay itself for one content item.
func (d *Dispatcher) relay(ctx context.Context, from msgport.Sender, c anon.Content) {
	v := d.guard.Classify(c.Text, from.ID, d.now())
	metrics.GuardVerdicts.WithLabelValues(v.String()).Inc()
	if v != guard.VerdictAllowed {
		d.logger.Info("ingress_blocked", "user_id", from.ID, "verdict", v.String())
		d.say(ctx, from, "spam_blocked")
		return
	}

	rt, err := d.uc.Resolve.Execute(ctx, usecase.ResolveRecipientInput{SenderID: from.ID})
	switch {
	case errors.Is(err, anon.ErrNoRoute):
		d.say(ctx, from, "must_join_or_reply")
		return
	case errors.Is(err, anon.ErrSelfMessage):
		d.say(ctx, from, "cannot_self_message")
		return
	case err != nil:
		d.logger.Error("resolve_recipient_failed", "user_id", from.ID, "err", err)
		d.say(ctx, from, "error_generic")
		return
	}

	_, err = d.uc.Relay.Execute(ctx, usecase.RelayMessageInput{Route: rt, Content: c, SenderLang: from.LanguageCode})
	switch {
	case errors.Is(err, usecase.ErrDeliveryFailed):
		// the sender was already told
	case errors.Is(err, anon.ErrSelfMessage):
		d.say(ctx, from, "cannot_self_message")
	case err != nil:
		d.logger.Error("relay_failed", "user_id", from.ID, "err", err)
		d.say(ctx, from, "error_generic")
	}
}

func (d *Dispatcher) onReaction(ctx context.Context, r *msgport.Reaction) {
	out, err := d.uc.Mirror.Execute(ctx, usecase.MirrorReactionInput{
		At:      anon.Locator{ChatID: r.At.ChatID, MessageID: r.At.MessageID},
		ActorID: r.ActorID,
		Emoji:   r.Emoji,
	})
	if err != nil {
		d.logger.Warn("reaction_mirror_failed", "chat_id", r.At.ChatID, "message_id", r.At.MessageID, "err", err)
		return
	}
	d.logger.Debug("reaction_handled", "outcome", string(out))
}

func (d *Dispatcher) lang(ctx context.Context, s msgport.Sender) string {
	return d.locale.Resolve(ctx, s.ID, s.LanguageCode)
}

// say sends a localized text to the sender's private chat.
func (d *Dispatcher) say(ctx context.Context, to msgport.Sender, key string, kv ...any) {
	d.send(ctx, to.ID, i18n.T(d.lang(ctx, to), key, kv...), nil)
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, markup msgport.Markup) {
	ctx, cancel := context.WithTimeout(ctx, usecase.DefaultSendTimeout)
	defer cancel()
	if _, err := d.messenger.SendText(ctx, chatID, text, nil, markup); err != nil {
		d.logger.Warn("send_text_failed", "chat_id", chatID, "err", err)
	}
}
