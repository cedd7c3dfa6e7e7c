package feed

import (
	"time"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
)

// Event names pushed to dashboard viewers.
const (
	EventNewMessage          = "newMessage"
	EventConversationUpdated = "conversationUpdated"
	EventReactionUpdate      = "reactionUpdate"
)

type ReactionsView struct {
	Sender    string         `json:"sender,omitempty"`
	Recipient string         `json:"recipient,omitempty"`
	Combined  map[string]int `json:"combined"`
}

// MessageView is the dashboard representation of a stored message.
type MessageView struct {
	ID          int64         `json:"id"`
	Sender      int64         `json:"sender"`
	Recipient   int64         `json:"recipient"`
	RoomKey     string        `json:"room_key"`
	Kind        anon.Kind     `json:"kind"`
	Text        string        `json:"text,omitempty"`
	MediaFileID string        `json:"media_file_id,omitempty"`
	Delivered   bool          `json:"delivered"`
	Reactions   ReactionsView `json:"reactions"`
	Reveal      anon.Reveal   `json:"reveal"`
	CreatedAt   time.Time     `json:"created_at"`
}

func ViewOf(m anon.Message) MessageView {
	return MessageView{
		ID:          m.ID,
		Sender:      m.Sender,
		Recipient:   m.Recipient,
		RoomKey:     m.RoomKey,
		Kind:        m.Kind,
		Text:        m.Text,
		MediaFileID: m.Media.FileID,
		Delivered:   !m.Delivered.IsZero(),
		Reactions: ReactionsView{
			Sender:    m.Reactions.Origin,
			Recipient: m.Reactions.Delivered,
			Combined:  m.Reactions.Combined(),
		},
		Reveal:    m.Reveal,
		CreatedAt: m.CreatedAt,
	}
}

// ConversationUpdate tells list views which room moved to the top.
type ConversationUpdate struct {
	RoomKey       string    `json:"room_key"`
	LastMessageID int64     `json:"last_message_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	Preview       string    `json:"preview"`
}

type ReactionUpdate struct {
	MessageID         int64          `json:"messageId"`
	SenderReaction    string         `json:"senderReaction"`
	RecipientReaction string         `json:"recipientReaction"`
	Reactions         map[string]int `json:"reactions"`
}
