package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
)

// TelegramOptions tunes the outbound side of the adapter.
type TelegramOptions struct {
	// CallTimeout bounds every outbound API call.
	CallTimeout time.Duration
	// RatePerSec throttles outbound calls across the process. Zero disables throttling.
	RatePerSec float64
	Burst      int
}

// Telegram implements port.Messenger over the Bot API and converts inbound updates to port.Event.
type Telegram struct {
	b       *bot.Bot
	limiter *rate.Limiter
	timeout time.Duration

	mu      sync.RWMutex
	handler port.EventHandler

	selfMu   sync.Mutex
	selfID   int64
	selfName string
}

// NewTelegram builds the bot client. Updates are not consumed until Listen.
func NewTelegram(token string, opts TelegramOptions) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	t := &Telegram{timeout: opts.CallTimeout}
	if t.timeout <= 0 {
		t.timeout = 15 * time.Second
	}
	if opts.RatePerSec > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}

	b, err := bot.New(token,
		bot.WithDefaultHandler(t.onUpdate),
		bot.WithAllowedUpdates(bot.AllowedUpdates{
			"message",
			"callback_query",
			"message_reaction",
			"pre_checkout_query",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("telegram: new bot: %w", err)
	}
	t.b = b
	return t, nil
}

var _ port.Messenger = (*Telegram)(nil)

// Listen long-polls for updates and hands each one to h. Blocks until ctx is done.
func (t *Telegram) Listen(ctx context.Context, h port.EventHandler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
	t.b.Start(ctx)
}

// call applies the throttle and the per-call timeout.
func (t *Telegram) call(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	return cctx, cancel, nil
}

func (t *Telegram) Copy(ctx context.Context, chatID int64, from port.Ref, markup port.Markup) (port.Ref, error) {
	cctx, cancel, err := t.call(ctx)
	if err != nil {
		return port.Ref{}, err
	}
	defer cancel()
	res, err := t.b.CopyMessage(cctx, &bot.CopyMessageParams{
		ChatID:      chatID,
		FromChatID:  from.ChatID,
		MessageID:   from.MessageID,
		ReplyMarkup: toMarkup(markup),
	})
	if err != nil {
		return port.Ref{}, fmt.Errorf("telegram: copyMessage: %w", err)
	}
	return port.Ref{ChatID: chatID, MessageID: res.ID}, nil
}

func (t *Telegram) SendText(ctx context.Context, chatID int64, text string, entities []port.Entity, markup port.Markup) (port.Ref, error) {
	cctx, cancel, err := t.call(ctx)
	if err != nil {
		return port.Ref{}, err
	}
	defer cancel()
	msg, err := t.b.SendMessage(cctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		Entities:    toEntities(entities),
		ReplyMarkup: toMarkup(markup),
	})
	if err != nil {
		return port.Ref{}, fmt.Errorf("telegram: sendMessage: %w", err)
	}
	return refOf(msg), nil
}

func (t *Telegram) SendMedia(ctx context.Context, chatID int64, m port.Media, markup port.Markup) (port.Ref, error) {
	if m.FileID == "" {
		return port.Ref{}, errors.New("telegram: media without file id")
	}
	cctx, cancel, err := t.call(ctx)
	if err != nil {
		return port.Ref{}, err
	}
	defer cancel()

	file := &models.InputFileString{Data: m.FileID}
	caption, entities := m.Caption, toEntities(m.CaptionEntities)
	rm := toMarkup(markup)

	var msg *models.Message
	switch m.Kind {
	case port.MediaPhoto:
		msg, err = t.b.SendPhoto(cctx, &bot.SendPhotoParams{ChatID: chatID, Photo: file, Caption: caption, CaptionEntities: entities, ReplyMarkup: rm})
	case port.MediaVideo:
		msg, err = t.b.SendVideo(cctx, &bot.SendVideoParams{ChatID: chatID, Video: file, Caption: caption, CaptionEntities: entities, ReplyMarkup: rm})
	case port.MediaDocument:
		msg, err = t.b.SendDocument(cctx, &bot.SendDocumentParams{ChatID: chatID, Document: file, Caption: caption, CaptionEntities: entities, ReplyMarkup: rm})
	case port.MediaAnimation:
		msg, err = t.b.SendAnimation(cctx, &bot.SendAnimationParams{ChatID: chatID, Animation: file, Caption: caption, CaptionEntities: entities, ReplyMarkup: rm})
	case port.MediaAudio:
		msg, err = t.b.SendAudio(cctx, &bot.SendAudioParams{ChatID: chatID, Audio: file, Caption: caption, CaptionEntities: entities, ReplyMarkup: rm})
	case port.MediaSticker:
		msg, err = t.b.SendSticker(cctx, &bot.SendStickerParams{ChatID: chatID, Sticker: file, ReplyMarkup: rm})
	case port.MediaVoice:
		msg, err = t.b.SendVoice(cctx, &bot.SendVoiceParams{ChatID: chatID, Voice: file, ReplyMarkup: rm})
	case port.MediaVideoNote:
		msg, err = t.b.SendVideoNote(cctx, &bot.SendVideoNoteParams{ChatID: chatID, VideoNote: file, ReplyMarkup: rm})
	default:
		return port.Ref{}, fmt.Errorf("telegram: unsupported media kind %q", m.Kind)
	}
	if err != nil {
		return port.Ref{}, fmt.Errorf("telegram: send %s: %w", m.Kind, err)
	}
	return refOf(msg), nil
}

func (t *Telegram) SetReaction(ctx context.Context, target port.Ref, emoji string) error {
	cctx, cancel, err := t.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	reaction := []models.ReactionType{}
	if emoji != "" {
		reaction = append(reaction, models.ReactionType{
			Type: models.ReactionTypeTypeEmoji,
			ReactionTypeEmoji: &models.ReactionTypeEmoji{
				Type:  models.ReactionTypeTypeEmoji,
				Emoji: emoji,
			},
		})
	}
	_, err = t.b.SetMessageReaction(cctx, &bot.SetMessageReactionParams{
		ChatID:    target.ChatID,
		MessageID: target.MessageID,
		Reaction:  reaction,
	})
	if err != nil {
		return fmt.Errorf("telegram: setMessageReaction: %w", err)
	}
	return nil
}

func (t *Telegram) SendInvoice(ctx context.Context, inv port.Invoice) error {
	cctx, cancel, err := t.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = t.b.SendInvoice(cctx, &bot.SendInvoiceParams{
		ChatID:      inv.ChatID,
		Title:       inv.Title,
		Description: inv.Description,
		Payload:     inv.Payload,
		Currency:    inv.Currency,
		Prices:      []models.LabeledPrice{{Label: inv.Label, Amount: inv.Amount}},
	})
	if err != nil {
		return fmt.Errorf("telegram: sendInvoice: %w", err)
	}
	return nil
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string) error {
	cctx, cancel, err := t.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = t.b.AnswerCallbackQuery(cctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	return err
}

func (t *Telegram) AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errMessage string) error {
	cctx, cancel, err := t.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = t.b.AnswerPreCheckoutQuery(cctx, &bot.AnswerPreCheckoutQueryParams{
		PreCheckoutQueryID: queryID,
		OK:                 ok,
		ErrorMessage:       errMessage,
	})
	return err
}

// Self resolves the bot's id and caches it after the first successful lookup.
func (t *Telegram) Self(ctx context.Context) (int64, error) {
	if err := t.loadMe(ctx); err != nil {
		return 0, err
	}
	return t.selfID, nil
}

// Username is the bot's @handle without the @, used to build invite links.
func (t *Telegram) Username(ctx context.Context) (string, error) {
	if err := t.loadMe(ctx); err != nil {
		return "", err
	}
	return t.selfName, nil
}

func (t *Telegram) loadMe(ctx context.Context) error {
	t.selfMu.Lock()
	defer t.selfMu.Unlock()
	if t.selfID != 0 {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	me, err := t.b.GetMe(cctx)
	if err != nil {
		return fmt.Errorf("telegram: getMe: %w", err)
	}
	t.selfID, t.selfName = me.ID, me.Username
	return nil
}

func (t *Telegram) onUpdate(ctx context.Context, _ *bot.Bot, u *models.Update) {
	t.mu.RLock()
	h := t.handler
	t.mu.RUnlock()
	if h == nil || u == nil {
		return
	}
	if ev, ok := toEvent(u); ok {
		h(ctx, ev)
	}
}

func refOf(m *models.Message) port.Ref {
	if m == nil {
		return port.Ref{}
	}
	return port.Ref{ChatID: m.Chat.ID, MessageID: m.ID}
}

func toMarkup(m port.Markup) models.ReplyMarkup {
	if len(m) == 0 {
		return nil
	}
	rows := make([][]models.InlineKeyboardButton, 0, len(m))
	for _, row := range m {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.InlineKeyboardButton{Text: b.Text, CallbackData: b.CallbackData})
		}
		rows = append(rows, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func toEntities(in []port.Entity) []models.MessageEntity {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.MessageEntity, 0, len(in))
	for _, e := range in {
		out = append(out, models.MessageEntity{
			Type:          models.MessageEntityType(e.Type),
			Offset:        e.Offset,
			Length:        e.Length,
			URL:           e.URL,
			Language:      e.Language,
			CustomEmojiID: e.CustomEmojiID,
		})
	}
	return out
}
