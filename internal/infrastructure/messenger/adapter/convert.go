package adapter

import (
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
)

func toEvent(u *models.Update) (port.Event, bool) {
	switch {
	case u.Message != nil:
		return port.Event{Message: toInbound(u.Message)}, true
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		cb := &port.Callback{ID: cq.ID, From: toSender(&cq.From), Data: cq.Data}
		if cq.Message.Message != nil {
			cb.Message = refOf(cq.Message.Message)
		}
		return port.Event{Callback: cb}, true
	case u.MessageReaction != nil:
		r := u.MessageReaction
		if r.User == nil {
			// anonymous chat reactions carry no actor
			return port.Event{}, false
		}
		return port.Event{Reaction: &port.Reaction{
			At:      port.Ref{ChatID: r.Chat.ID, MessageID: r.MessageID},
			ActorID: r.User.ID,
			Emoji:   latestEmoji(r.NewReaction),
		}}, true
	case u.PreCheckoutQuery != nil:
		q := u.PreCheckoutQuery
		return port.Event{PreCheckout: &port.PreCheckout{
			ID:       q.ID,
			From:     toSender(q.From),
			Payload:  q.InvoicePayload,
			Currency: q.Currency,
			Amount:   q.TotalAmount,
		}}, true
	}
	return port.Event{}, false
}

// latestEmoji keeps only the last plain emoji; custom emoji are not mirrored.
func latestEmoji(rs []models.ReactionType) string {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].ReactionTypeEmoji != nil && rs[i].ReactionTypeEmoji.Emoji != "" {
			return rs[i].ReactionTypeEmoji.Emoji
		}
	}
	return ""
}

func toSender(u *models.User) port.Sender {
	if u == nil {
		return port.Sender{}
	}
	return port.Sender{
		ID:           u.ID,
		IsBot:        u.IsBot,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		LanguageCode: u.LanguageCode,
	}
}

func toInbound(m *models.Message) *port.InboundMessage {
	in := &port.InboundMessage{
		Ref:    refOf(m),
		From:   toSender(m.From),
		SentAt: time.Unix(int64(m.Date), 0).UTC(),
	}
	if m.Caption != "" {
		in.Text, in.Entities = m.Caption, fromEntities(m.CaptionEntities)
	} else {
		in.Text, in.Entities = m.Text, fromEntities(m.Entities)
	}

	switch {
	case len(m.Photo) > 0:
		in.Kind = "photo"
		in.FileID = m.Photo[len(m.Photo)-1].FileID
		in.ThumbID = m.Photo[0].FileID
	case m.Animation != nil:
		in.Kind, in.FileID = "animation", m.Animation.FileID
		in.ThumbID = thumbOf(m.Animation.Thumbnail)
	case m.Video != nil:
		in.Kind, in.FileID = "video", m.Video.FileID
		in.ThumbID = thumbOf(m.Video.Thumbnail)
	case m.VideoNote != nil:
		in.Kind, in.FileID = "video_note", m.VideoNote.FileID
		in.ThumbID = thumbOf(m.VideoNote.Thumbnail)
	case m.Sticker != nil:
		in.Kind, in.FileID = "sticker", m.Sticker.FileID
		in.ThumbID = thumbOf(m.Sticker.Thumbnail)
	case m.Voice != nil:
		in.Kind, in.FileID = "voice", m.Voice.FileID
	case m.Audio != nil:
		in.Kind, in.FileID = "audio", m.Audio.FileID
		in.ThumbID = thumbOf(m.Audio.Thumbnail)
	case m.Document != nil:
		in.Kind, in.FileID = "document", m.Document.FileID
		in.ThumbID = thumbOf(m.Document.Thumbnail)
	case m.Text != "":
		in.Kind = "text"
	default:
		in.Kind = "unknown"
	}

	if p := m.SuccessfulPayment; p != nil {
		in.Payment = &port.Payment{
			Payload:          p.InvoicePayload,
			Currency:         p.Currency,
			Amount:           p.TotalAmount,
			ChargeID:         p.TelegramPaymentChargeID,
			ProviderChargeID: p.ProviderPaymentChargeID,
		}
	}
	return in
}

func thumbOf(p *models.PhotoSize) string {
	if p == nil {
		return ""
	}
	return p.FileID
}

func fromEntities(in []models.MessageEntity) []port.Entity {
	if len(in) == 0 {
		return nil
	}
	out := make([]port.Entity, 0, len(in))
	for _, e := range in {
		out = append(out, port.Entity{
			Type:          string(e.Type),
			Offset:        e.Offset,
			Length:        e.Length,
			URL:           e.URL,
			Language:      e.Language,
			CustomEmojiID: e.CustomEmojiID,
		})
	}
	return out
}
