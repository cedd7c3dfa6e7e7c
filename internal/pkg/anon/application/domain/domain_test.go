package anon

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, "111_222", RoomKey(222, 111))
	assert.Equal(t, RoomKey(5, 9), RoomKey(9, 5))

	a, b, err := ParseRoomKey("111_222")
	require.NoError(t, err)
	assert.Equal(t, [2]int64{111, 222}, [2]int64{a, b})

	for _, bad := range []string{"", "111", "222_111", "x_1", "1_y"} {
		_, _, err := ParseRoomKey(bad)
		assert.ErrorIs(t, err, ErrInvalidRoomKey, bad)
	}
}

func TestNewMessage(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewMessage(1, 1, Content{Kind: KindText}, now)
	assert.ErrorIs(t, err, ErrSelfMessage)
	_, err = NewMessage(0, 1, Content{Kind: KindText}, now)
	assert.ErrorIs(t, err, ErrNoRoute)

	m, err := NewMessage(222, 111, Content{Origin: Locator{ChatID: 222, MessageID: 3}}, now)
	require.NoError(t, err)
	assert.Equal(t, "111_222", m.RoomKey)
	assert.Equal(t, KindUnknown, m.Kind)
	assert.Equal(t, now, m.CreatedAt)
}

func TestSideOf_DeliveredFirst(t *testing.T) {
	loc := Locator{ChatID: 7, MessageID: 7}
	m := &Message{Origin: loc, Delivered: loc}
	side, ok := m.SideOf(loc)
	require.True(t, ok)
	assert.Equal(t, SideDelivered, side)

	_, ok = m.SideOf(Locator{})
	assert.False(t, ok)
	assert.Equal(t, SideOrigin, SideDelivered.Opposite())
}

func TestReactions_Combined(t *testing.T) {
	var r Reactions
	r.Set(SideOrigin, "👍")
	r.Set(SideDelivered, "👍")
	assert.Equal(t, map[string]int{"👍": 2}, r.Combined())
	r.Set(SideDelivered, "")
	assert.Equal(t, map[string]int{"👍": 1}, r.Combined())
	assert.Equal(t, "👍", r.Get(SideOrigin))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "[photo]", Preview("  ", KindPhoto))
	assert.Equal(t, "hi", Preview(" hi\n", KindText))
	long := strings.Repeat("ж", PreviewLimit+20)
	assert.Equal(t, PreviewLimit, len([]rune(Preview(long, KindText))))
}

func TestKindRebuildIsTotal(t *testing.T) {
	assert.Equal(t, RebuildText, KindText.Rebuild())
	assert.Equal(t, RebuildCaptionedMedia, KindAnimation.Rebuild())
	assert.Equal(t, RebuildBareMedia, KindVideoNote.Rebuild())
	assert.Equal(t, RebuildPlaceholder, KindUnknown.Rebuild())
	assert.Equal(t, KindUnknown, ParseKind("poll"))
	assert.False(t, KindText.IsMedia())
	assert.True(t, KindVoice.IsMedia())
}

func TestActionRoundTrip(t *testing.T) {
	for _, a := range []Action{ReplyAction(111), RevealAction(9), AskAction(222), CancelReplyAction(), LangAction("uz"), MenuAction("getlink")} {
		got, ok := ParseAction(a.Encode())
		require.True(t, ok, a.Encode())
		assert.Equal(t, a, got)
	}
	for _, bad := range []string{"", "reply:", "reply:abc", "reveal:-1", "close:1", "lang"} {
		_, ok := ParseAction(bad)
		assert.False(t, ok, bad)
	}
}

func TestPayloadsAndStartParam(t *testing.T) {
	id, err := ParseRevealPayload(RevealPayload(42))
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
	_, err = ParseRevealPayload("reveal:x")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	owner, ok := ParseStartParam(StartParam(222))
	assert.True(t, ok)
	assert.EqualValues(t, 222, owner)
	_, ok = ParseStartParam("reveal_5")
	assert.False(t, ok)
}

func TestReplyStateExpired(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := ReplyState{CreatedAt: created}
	assert.False(t, s.Expired(created.Add(14*time.Minute), 15*time.Minute))
	assert.True(t, s.Expired(created.Add(15*time.Minute), 15*time.Minute))
	assert.False(t, s.Expired(created.Add(time.Hour), 0))
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Ali V", User{ID: 1, FirstName: "Ali", LastName: "V"}.DisplayName())
	assert.Equal(t, "@ali", User{ID: 1, Username: "ali"}.DisplayName())
	assert.Equal(t, "7", User{ID: 7}.DisplayName())
}
