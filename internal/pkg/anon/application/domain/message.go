package anon

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Locator addresses one physical copy of a message: a chat and a message inside it.
type Locator struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

func (l Locator) IsZero() bool { return l.ChatID == 0 || l.MessageID == 0 }

// Side names one of the two physical copies of a logical message.
// The origin copy lives in the sender's chat, the delivered copy in the recipient's chat.
type Side int

const (
	SideOrigin Side = iota + 1
	SideDelivered
)

func (s Side) Opposite() Side {
	if s == SideOrigin {
		return SideDelivered
	}
	return SideOrigin
}

func (s Side) String() string {
	switch s {
	case SideOrigin:
		return "origin"
	case SideDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Reactions keeps the single current emoji per side. Empty means no reaction.
type Reactions struct {
	Origin    string
	Delivered string
}

func (r Reactions) Get(side Side) string {
	if side == SideOrigin {
		return r.Origin
	}
	return r.Delivered
}

func (r *Reactions) Set(side Side, emoji string) {
	if side == SideOrigin {
		r.Origin = emoji
		return
	}
	r.Delivered = emoji
}

// Combined is the display view: emoji -> number of sides showing it.
func (r Reactions) Combined() map[string]int {
	out := make(map[string]int, 2)
	if r.Origin != "" {
		out[r.Origin]++
	}
	if r.Delivered != "" {
		out[r.Delivered]++
	}
	return out
}

// Reveal is the paid identity disclosure state of a message.
type Reveal struct {
	Purchased        bool       `json:"purchased"`
	PurchasedAt      *time.Time `json:"purchased_at,omitempty"`
	Stars            int        `json:"stars,omitempty"`
	ChargeID         string     `json:"-"`
	ProviderChargeID string     `json:"-"`
}

// Message is the persisted relay record. Only Delivered, Reactions and Reveal change after creation.
type Message struct {
	ID        int64
	Sender    int64
	Recipient int64
	RoomKey   string
	Kind      Kind
	Text      string
	Origin    Locator
	Delivered Locator
	Media     Media
	Reactions Reactions
	Reveal    Reveal
	CreatedAt time.Time
}

// NewMessage builds the record for content relayed from sender to recipient.
func NewMessage(sender, recipient int64, c Content, now time.Time) (*Message, error) {
	if sender == 0 || recipient == 0 {
		return nil, ErrNoRoute
	}
	if sender == recipient {
		return nil, ErrSelfMessage
	}
	ts := c.SentAt
	if ts.IsZero() {
		ts = now
	}
	kind := c.Kind
	if kind == "" {
		kind = KindUnknown
	}
	return &Message{
		Sender:    sender,
		Recipient: recipient,
		RoomKey:   RoomKey(sender, recipient),
		Kind:      kind,
		Text:      c.Text,
		Origin:    c.Origin,
		Media:     c.Media,
		CreatedAt: ts.UTC(),
	}, nil
}

// Locator returns the locator of the given copy; zero if that copy was never recorded.
func (m *Message) Locator(side Side) Locator {
	if side == SideOrigin {
		return m.Origin
	}
	return m.Delivered
}

// SideOf resolves which copy l points at. The delivered copy is checked first.
func (m *Message) SideOf(l Locator) (Side, bool) {
	if l.IsZero() {
		return 0, false
	}
	if m.Delivered == l {
		return SideDelivered, true
	}
	if m.Origin == l {
		return SideOrigin, true
	}
	return 0, false
}

// PreviewLimit caps the summary preview length in runes.
const PreviewLimit = 180

// Preview is the one-line text shown in conversation lists.
func Preview(text string, kind Kind) string {
	p := strings.TrimSpace(text)
	if utf8.RuneCountInString(p) > PreviewLimit {
		p = string([]rune(p)[:PreviewLimit])
	}
	if p == "" {
		if kind == "" {
			kind = KindText
		}
		return "[" + string(kind) + "]"
	}
	return p
}
