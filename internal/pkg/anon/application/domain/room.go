package anon

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidRoomKey = errors.New("anon: invalid room key")

// CanonicalPair orders two participant ids so the smaller comes first.
func CanonicalPair(a, b int64) (int64, int64) {
	if a <= b {
		return a, b
	}
	return b, a
}

// RoomKey is the order-independent fingerprint of a pairing, e.g. "111_222".
func RoomKey(a, b int64) string {
	lo, hi := CanonicalPair(a, b)
	return strconv.FormatInt(lo, 10) + "_" + strconv.FormatInt(hi, 10)
}

// ParseRoomKey splits a room key back into its canonical pair.
func ParseRoomKey(key string) (int64, int64, error) {
	left, right, ok := strings.Cut(key, "_")
	if !ok {
		return 0, 0, ErrInvalidRoomKey
	}
	a, err := strconv.ParseInt(left, 10, 64)
	if err != nil {
		return 0, 0, ErrInvalidRoomKey
	}
	b, err := strconv.ParseInt(right, 10, 64)
	if err != nil {
		return 0, 0, ErrInvalidRoomKey
	}
	if RoomKey(a, b) != key {
		return 0, 0, ErrInvalidRoomKey
	}
	return a, b, nil
}

// ConversationSummary is the "most recent activity" projection of one room.
type ConversationSummary struct {
	RoomKey         string    `json:"room_key"`
	UserA           int64     `json:"user_a"`
	UserB           int64     `json:"user_b"`
	LastMessageID   int64     `json:"last_message_id"`
	LastMessageAt   time.Time `json:"last_message_at"`
	LastMessageText string    `json:"last_message_text"`
	LastKind        Kind      `json:"last_kind"`
	LastSender      int64     `json:"last_sender"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SummaryOf projects a persisted message into its room summary.
func SummaryOf(m Message, now time.Time) ConversationSummary {
	a, b := CanonicalPair(m.Sender, m.Recipient)
	return ConversationSummary{
		RoomKey:         RoomKey(a, b),
		UserA:           a,
		UserB:           b,
		LastMessageID:   m.ID,
		LastMessageAt:   m.CreatedAt,
		LastMessageText: Preview(m.Text, m.Kind),
		LastKind:        m.Kind,
		LastSender:      m.Sender,
		UpdatedAt:       now.UTC(),
	}
}
