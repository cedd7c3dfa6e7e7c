package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/metrics"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// RelayMessageInput is one inbound item along an already resolved route.
type RelayMessageInput struct {
	Route   anon.Route
	Content anon.Content
	// SenderLang is the platform language hint of the sender, if any.
	SenderLang string
}

type RelayResult struct {
	Message   anon.Message
	Persisted bool
	Tier      DeliveryTier
}

// RelayMessageUseCase persists, delivers and then dissolves one single-shot exchange.
type RelayMessageUseCase struct {
	Messages    repository.MessageRepository
	Summaries   repository.SummaryRepository
	Dissolve    *DissolvePairingUseCase
	Deliverer   *Deliverer
	Messenger   msgport.Messenger
	Locale      LocaleResolver
	RevealStars int
	Now         Clock
	Logger      *slog.Logger
}

func NewRelayMessageUseCase(
	messages repository.MessageRepository,
	summaries repository.SummaryRepository,
	pairs repository.PairingRepository,
	deliverer *Deliverer,
	locale LocaleResolver,
	revealStars int,
	logger *slog.Logger,
) *RelayMessageUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelayMessageUseCase{
		Messages:    messages,
		Summaries:   summaries,
		Dissolve:    NewDissolvePairingUseCase(pairs),
		Deliverer:   deliverer,
		Messenger:   deliverer.Messenger,
		Locale:      locale,
		RevealStars: revealStars,
		Logger:      logger,
	}
}

// Execute relays in.Content along in.Route. Persistence failures are logged and
// the item is still delivered, only without a reveal button. ErrDeliveryFailed
// is returned after the sender was told that nothing got through.
func (uc *RelayMessageUseCase) Execute(ctx context.Context, in RelayMessageInput) (*RelayResult, error) {
	rt := in.Route
	msg, err := anon.NewMessage(rt.Sender, rt.Recipient, in.Content, uc.Now.now())
	if err != nil {
		return nil, err
	}
	log := uc.Logger.With("sender", rt.Sender, "recipient", rt.Recipient, "role", rt.Role.String())

	res := &RelayResult{}
	if id, err := uc.Messages.CreateMessage(ctx, *msg); err != nil {
		log.Error("relay_persist_failed", "err", err)
	} else {
		msg.ID = id
		res.Persisted = true
		if _, err := uc.Summaries.UpsertSummaryIfNewer(ctx, anon.SummaryOf(*msg, uc.Now.now())); err != nil {
			log.Warn("relay_summary_failed", "message_id", id, "err", err)
		}
	}

	recipientLang := uc.Locale.Resolve(ctx, rt.Recipient, "")
	markup := uc.controls(rt, msg, res.Persisted, recipientLang)
	placeholder := uc.placeholder(rt.Role, in.Content, recipientLang)

	loc, tier, err := uc.Deliverer.Deliver(ctx, rt.Recipient, in.Content, placeholder, markup)
	res.Tier = tier
	metrics.RelayDeliveries.WithLabelValues(tier.String()).Inc()
	senderLang := uc.Locale.Resolve(ctx, rt.Sender, in.SenderLang)
	if err != nil {
		log.Error("relay_delivery_failed", "message_id", msg.ID, "err", err)
		uc.notify(ctx, rt.Sender, i18n.T(senderLang, "delivery_failed"))
		res.Message = *msg
		return res, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	msg.Delivered = loc
	if res.Persisted {
		if err := uc.Messages.SetDelivered(ctx, msg.ID, loc); err != nil {
			log.Warn("relay_set_delivered_failed", "message_id", msg.ID, "err", err)
		}
	}

	if err := uc.Dissolve.Execute(ctx, DissolvePairingInput{SenderID: rt.Sender, Role: rt.Role}); err != nil {
		log.Warn("relay_dissolve_failed", "err", err)
	}

	key := "message_sent_to_owner"
	if rt.Role == anon.RoleOwnerReplying {
		key = "reply_sent"
	}
	uc.notify(ctx, rt.Sender, i18n.T(senderLang, key))

	log.Info("relay_delivered", "message_id", msg.ID, "tier", tier.String(), "kind", msg.Kind)
	res.Message = *msg
	return res, nil
}

func (uc *RelayMessageUseCase) controls(rt anon.Route, msg *anon.Message, persisted bool, lang string) msgport.Markup {
	if rt.Role == anon.RoleOwnerReplying {
		return msgport.Markup{{
			{Text: i18n.T(lang, "btn_ask_again"), CallbackData: anon.AskAction(rt.Sender).Encode()},
		}}
	}
	row := []msgport.Button{
		{Text: i18n.T(lang, "btn_reply"), CallbackData: anon.ReplyAction(rt.Sender).Encode()},
	}
	if persisted {
		row = append(row, msgport.Button{
			Text:         i18n.T(lang, "btn_reveal", "stars", strconv.Itoa(uc.RevealStars)),
			CallbackData: anon.RevealAction(msg.ID).Encode(),
		})
	}
	return msgport.Markup{row}
}

func (uc *RelayMessageUseCase) placeholder(role anon.Role, c anon.Content, lang string) string {
	text := c.Text
	if text == "" {
		kind := c.Kind
		if kind == "" {
			kind = anon.KindUnknown
		}
		text = i18n.KindLabel(lang, string(kind))
	}
	if role == anon.RoleOwnerReplying {
		return i18n.T(lang, "reply_fallback_prefix", "text", text)
	}
	return text
}

func (uc *RelayMessageUseCase) notify(ctx context.Context, chatID int64, text string) {
	ctx, cancel := context.WithTimeout(ctx, uc.Deliverer.Timeout)
	defer cancel()
	if _, err := uc.Messenger.SendText(ctx, chatID, text, nil, nil); err != nil {
		uc.Logger.Warn("relay_notify_failed", "chat_id", chatID, "err", err)
	}
}
