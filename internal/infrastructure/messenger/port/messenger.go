package port

import (
	"context"
	"time"
)

// Ref addresses a message on the messaging surface.
type Ref struct {
	ChatID    int64
	MessageID int
}

// Entity is a formatting range, carried through verbatim.
type Entity struct {
	Type          string
	Offset        int
	Length        int
	URL           string
	Language      string
	CustomEmojiID string
}

// Button is an inline keyboard button bound to callback data.
type Button struct {
	Text         string
	CallbackData string
}

// Markup is an inline keyboard, one slice per row. Nil means no keyboard.
type Markup [][]Button

// MediaKind names the send primitive used to resend a stored file reference.
type MediaKind string

const (
	MediaPhoto     MediaKind = "photo"
	MediaVideo     MediaKind = "video"
	MediaDocument  MediaKind = "document"
	MediaSticker   MediaKind = "sticker"
	MediaAnimation MediaKind = "animation"
	MediaVoice     MediaKind = "voice"
	MediaAudio     MediaKind = "audio"
	MediaVideoNote MediaKind = "video_note"
)

// Media is a resend of an already uploaded file. Caption is ignored by kinds that have none.
type Media struct {
	Kind            MediaKind
	FileID          string
	Caption         string
	CaptionEntities []Entity
}

// Invoice is a priced purchase request in the platform's in-app currency.
type Invoice struct {
	ChatID      int64
	Title       string
	Description string
	Payload     string
	Currency    string
	Label       string
	Amount      int
}

// Messenger is the outbound "send content" primitive.
// Implementations must be safe for concurrent use.
type Messenger interface {
	// Copy makes a verbatim same-structure copy of from in chatID.
	Copy(ctx context.Context, chatID int64, from Ref, markup Markup) (Ref, error)
	SendText(ctx context.Context, chatID int64, text string, entities []Entity, markup Markup) (Ref, error)
	SendMedia(ctx context.Context, chatID int64, media Media, markup Markup) (Ref, error)
	// SetReaction replaces the bot's reaction on target. Empty emoji clears it.
	SetReaction(ctx context.Context, target Ref, emoji string) error
	SendInvoice(ctx context.Context, inv Invoice) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errMessage string) error
	// Self returns the bot's own user id.
	Self(ctx context.Context) (int64, error)
}

// Sender is the actor behind an inbound event.
type Sender struct {
	ID           int64
	IsBot        bool
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

// Payment is a completed purchase attached to an inbound message.
type Payment struct {
	Payload          string
	Currency         string
	Amount           int
	ChargeID         string
	ProviderChargeID string
}

// InboundMessage is a message the bot received. Kind uses the relay's kind names.
type InboundMessage struct {
	Ref      Ref
	From     Sender
	Kind     string
	Text     string // text, or caption for media
	Entities []Entity
	FileID   string
	ThumbID  string
	SentAt   time.Time
	Payment  *Payment
}

// Callback is an inline button press.
type Callback struct {
	ID      string
	From    Sender
	Data    string
	Message Ref
}

// Reaction is a change of reactions on a message by one actor.
type Reaction struct {
	At      Ref
	ActorID int64
	// Emoji is the actor's new single emoji; empty when removed or not an emoji.
	Emoji string
}

// PreCheckout must be answered before the platform completes a payment.
type PreCheckout struct {
	ID       string
	From     Sender
	Payload  string
	Currency string
	Amount   int
}

// Event is one inbound update. Exactly one field is set.
type Event struct {
	Message     *InboundMessage
	Callback    *Callback
	Reaction    *Reaction
	PreCheckout *PreCheckout
}

// EventHandler processes one inbound event.
type EventHandler func(ctx context.Context, ev Event)
