package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/memory"
)

func seedDelivered(t *testing.T, store *memory.Store, delivered anon.Locator) int64 {
	t.Helper()
	id, err := store.CreateMessage(context.Background(), anon.Message{
		Sender: 111, Recipient: 222, RoomKey: anon.RoomKey(111, 222), Kind: anon.KindText,
		Origin:    anon.Locator{ChatID: 111, MessageID: 10},
		Delivered: delivered,
	})
	require.NoError(t, err)
	return id
}

func TestMirror_IgnoresOwnReactions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	msgr := newFakeMessenger()
	id := seedDelivered(t, store, anon.Locator{ChatID: 222, MessageID: 20})
	uc := NewMirrorReactionUseCase(store, msgr, nil)

	outcome, err := uc.Execute(ctx, MirrorReactionInput{At: anon.Locator{ChatID: 222, MessageID: 20}, ActorID: botID, Emoji: "🔥"})
	require.NoError(t, err)
	assert.Equal(t, MirrorIgnoredSelf, outcome)

	m, _ := store.GetMessage(ctx, id)
	assert.Equal(t, anon.Reactions{}, m.Reactions)
	assert.Empty(t, msgr.reactions)
}

// selflessMessenger cannot resolve the bot's own id.
type selflessMessenger struct {
	*fakeMessenger
}

func (selflessMessenger) Self(context.Context) (int64, error) {
	return 0, errors.New("getMe: timeout")
}

func TestMirror_UnknownSelfStillStoresAndMirrors(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	msgr := newFakeMessenger()
	id := seedDelivered(t, store, anon.Locator{ChatID: 222, MessageID: 20})
	uc := NewMirrorReactionUseCase(store, selflessMessenger{msgr}, nil)

	outcome, err := uc.Execute(ctx, MirrorReactionInput{At: anon.Locator{ChatID: 222, MessageID: 20}, ActorID: 222, Emoji: "👍"})
	require.NoError(t, err)
	assert.Equal(t, MirrorApplied, outcome)

	m, _ := store.GetMessage(ctx, id)
	assert.Equal(t, "👍", m.Reactions.Delivered)
	require.Len(t, msgr.reactions, 1)
	assert.Equal(t, int64(111), msgr.reactions[0].Target.ChatID)
}

func TestMirror_BothDirectionsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	msgr := newFakeMessenger()
	id := seedDelivered(t, store, anon.Locator{ChatID: 222, MessageID: 20})
	uc := NewMirrorReactionUseCase(store, msgr, nil)

	_, err := uc.Execute(ctx, MirrorReactionInput{At: anon.Locator{ChatID: 222, MessageID: 20}, ActorID: 222, Emoji: "👍"})
	require.NoError(t, err)
	_, err = uc.Execute(ctx, MirrorReactionInput{At: anon.Locator{ChatID: 111, MessageID: 10}, ActorID: 111, Emoji: "❤"})
	require.NoError(t, err)

	m, _ := store.GetMessage(ctx, id)
	assert.Equal(t, anon.Reactions{Origin: "❤", Delivered: "👍"}, m.Reactions)
	assert.Equal(t, map[string]int{"❤": 1, "👍": 1}, m.Reactions.Combined())

	require.Len(t, msgr.reactions, 2)
	assert.Equal(t, int64(111), msgr.reactions[0].Target.ChatID)
	assert.Equal(t, "👍", msgr.reactions[0].Emoji)
	assert.Equal(t, int64(222), msgr.reactions[1].Target.ChatID)
	assert.Equal(t, "❤", msgr.reactions[1].Emoji)

	// removal clears the slot and mirrors an empty set
	_, err = uc.Execute(ctx, MirrorReactionInput{At: anon.Locator{ChatID: 222, MessageID: 20}, ActorID: 222})
	require.NoError(t, err)
	m, _ = store.GetMessage(ctx, id)
	assert.Equal(t, "", m.Reactions.Delivered)
	assert.Equal(t, "", msgr.reactions[2].Emoji)
}

func TestMirror_MissingTargetAndFailuresKeepState(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	msgr := newFakeMessenger()
	id := seedDelivered(t, store, anon.Locator{})
	uc := NewMirrorReactionUseCase(store, msgr, nil)

	outcome, err := uc.Execute(ctx, MirrorReactionInput{At: anon.Locator{ChatID: 111, MessageID: 10}, ActorID: 111, Emoji: "😂"})
	require.NoError(t, err)
	assert.Equal(t, MirrorNoTarget, outcome)
	m, _ := store.GetMessage(ctx, id)
	assert.Equal(t, "😂", m.Reactions.Origin)

	require.NoError(t, store.SetDelivered(ctx, id, anon.Locator{ChatID: 222, MessageID: 20}))
	msgr.failReaction = true
	outcome, err = uc.Execute(ctx, MirrorReactionInput{At: anon.Locator{ChatID: 222, MessageID: 20}, ActorID: 222, Emoji: "👎"})
	require.NoError(t, err)
	assert.Equal(t, MirrorFailed, outcome)
	m, _ = store.GetMessage(ctx, id)
	assert.Equal(t, "👎", m.Reactions.Delivered)
}

func TestMirror_UnmatchedLocator(t *testing.T) {
	store := memory.NewStore()
	uc := NewMirrorReactionUseCase(store, newFakeMessenger(), nil)
	outcome, err := uc.Execute(context.Background(), MirrorReactionInput{At: anon.Locator{ChatID: 1, MessageID: 1}, ActorID: 1, Emoji: "👍"})
	require.NoError(t, err)
	assert.Equal(t, MirrorUnmatched, outcome)
}
