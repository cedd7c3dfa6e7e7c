package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessage(t *testing.T, sender, recipient int64, text string) anon.Message {
	t.Helper()
	m, err := anon.NewMessage(sender, recipient, anon.Content{
		Kind:   anon.KindText,
		Text:   text,
		Origin: anon.Locator{ChatID: sender, MessageID: 10},
	}, time.Now())
	require.NoError(t, err)
	return *m
}

func TestStore_SessionUpsertKeepsOnePerAnon(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(owner int64) {
			defer wg.Done()
			_ = s.UpsertSession(ctx, anon.Session{AnonID: 111, OwnerID: owner})
		}(int64(200 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, s.SessionCount())
	got, err := s.GetSession(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, int64(111), got.AnonID)
}

func TestStore_MarkPurchasedOnlyOnce(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id, err := s.CreateMessage(ctx, newMessage(t, 111, 222, "hello"))
	require.NoError(t, err)

	proof := repository.PurchaseProof{PayerID: 222, Stars: 10, ChargeID: "c1", At: time.Now()}
	first, err := s.MarkPurchased(ctx, id, proof)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Reveal.Purchased)

	proof.ChargeID = "c2"
	second, err := s.MarkPurchased(ctx, id, proof)
	require.NoError(t, err)
	assert.Nil(t, second)

	m, err := s.GetMessage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "c1", m.Reveal.ChargeID)

	wrongPayer, err := s.MarkPurchased(ctx, id, repository.PurchaseProof{PayerID: 999})
	require.NoError(t, err)
	assert.Nil(t, wrongPayer)

	missing, err := s.MarkPurchased(ctx, 404, proof)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_SummaryUpsertIsMonotonic(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	newer := anon.ConversationSummary{RoomKey: "111_222", LastMessageID: 5, LastMessageText: "new"}
	older := anon.ConversationSummary{RoomKey: "111_222", LastMessageID: 3, LastMessageText: "old"}

	ok, err := s.UpsertSummaryIfNewer(ctx, newer)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UpsertSummaryIfNewer(ctx, older)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := s.ListSummaries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].LastMessageText)
}

func TestStore_ListingOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.CreateMessage(ctx, newMessage(t, 111, 222, "m"))
		require.NoError(t, err)
	}
	_, err := s.CreateMessage(ctx, newMessage(t, 333, 222, "other"))
	require.NoError(t, err)

	after, err := s.ListMessagesAfter(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, int64(3), after[0].ID)
	assert.Equal(t, int64(4), after[1].ID)

	room, err := s.ListRoomMessages(ctx, "111_222", 5, 10)
	require.NoError(t, err)
	require.Len(t, room, 4)
	assert.Equal(t, int64(4), room[0].ID)

	latest, err := s.LatestPerRoom(ctx, 10)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(6), latest[0].ID)
	assert.Equal(t, int64(5), latest[1].ID)

	maxID, err := s.MaxMessageID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), maxID)
}

func TestStore_SubscriptionDeliversAndBreaks(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := s.Subscribe(ctx)
	require.NoError(t, err)

	id, err := s.CreateMessage(ctx, newMessage(t, 111, 222, "hello"))
	require.NoError(t, err)
	require.NoError(t, s.SetReactions(ctx, id, anon.Reactions{Delivered: "👍"}))

	c, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.ChangeInsert, c.Op)

	c, err = sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.ChangeUpdate, c.Op)
	assert.True(t, c.TouchesReactions())

	boom := errors.New("boom")
	s.BreakSubscriptions(boom)
	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Subscribers())
}
