package anon

import (
	"strings"
	"time"
)

// Kind classifies the payload of a relayed item.
type Kind string

const (
	KindText      Kind = "text"
	KindPhoto     Kind = "photo"
	KindVideo     Kind = "video"
	KindDocument  Kind = "document"
	KindSticker   Kind = "sticker"
	KindAnimation Kind = "animation"
	KindVoice     Kind = "voice"
	KindAudio     Kind = "audio"
	KindVideoNote Kind = "video_note"
	KindUnknown   Kind = "unknown"
)

// ParseKind maps a stored or wire value back to a Kind. Anything unrecognised is KindUnknown.
func ParseKind(s string) Kind {
	switch k := Kind(strings.TrimSpace(s)); k {
	case KindText, KindPhoto, KindVideo, KindDocument, KindSticker,
		KindAnimation, KindVoice, KindAudio, KindVideoNote:
		return k
	default:
		return KindUnknown
	}
}

// Rebuild names how an item of a given kind is reconstructed when a verbatim copy fails.
type Rebuild int

const (
	// RebuildPlaceholder has no structured reconstruction; only the text placeholder applies.
	RebuildPlaceholder Rebuild = iota
	// RebuildText resends the text with its formatting ranges.
	RebuildText
	// RebuildCaptionedMedia resends the stored media reference with caption and caption ranges.
	RebuildCaptionedMedia
	// RebuildBareMedia resends the stored media reference without a caption.
	RebuildBareMedia
)

// Rebuild is total over Kind: adding a kind means adding a case here and nothing else.
func (k Kind) Rebuild() Rebuild {
	switch k {
	case KindText:
		return RebuildText
	case KindPhoto, KindVideo, KindDocument, KindAnimation, KindAudio:
		return RebuildCaptionedMedia
	case KindSticker, KindVoice, KindVideoNote:
		return RebuildBareMedia
	default:
		return RebuildPlaceholder
	}
}

// IsMedia reports whether the kind carries a file reference.
func (k Kind) IsMedia() bool {
	r := k.Rebuild()
	return r == RebuildCaptionedMedia || r == RebuildBareMedia
}

// Entity is a formatting range over text or caption.
type Entity struct {
	Type          string `json:"type"`
	Offset        int    `json:"offset"`
	Length        int    `json:"length"`
	URL           string `json:"url,omitempty"`
	Language      string `json:"language,omitempty"`
	CustomEmojiID string `json:"custom_emoji_id,omitempty"`
}

// Media holds the platform file references of a media item.
type Media struct {
	FileID      string
	ThumbFileID string
}

// Content is an inbound item as the relay sees it.
type Content struct {
	Kind     Kind
	Origin   Locator
	Text     string // text, or caption for media
	Entities []Entity
	Media    Media
	SentAt   time.Time
}

// IsCommand reports whether the item is a slash command rather than relayable content.
func (c Content) IsCommand() bool {
	return c.Kind == KindText && strings.HasPrefix(c.Text, "/")
}
