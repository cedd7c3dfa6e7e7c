package task

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	qadapter "github.com/humoyun-dev/anonim-chat/internal/infrastructure/queue/adapter"
	qport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/queue/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/memory"
)

type textSink struct {
	msgport.Messenger
	mu    sync.Mutex
	texts map[int64][]string
}

func (s *textSink) SendText(_ context.Context, chatID int64, text string, _ []msgport.Entity, _ msgport.Markup) (msgport.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[chatID] = append(s.texts[chatID], text)
	return msgport.Ref{ChatID: chatID, MessageID: len(s.texts[chatID])}, nil
}

type enLocale struct{}

func (enLocale) Resolve(context.Context, int64, string) string { return "en" }

func setup(t *testing.T) (*qadapter.Inline, *memory.Store, *textSink, int64) {
	t.Helper()
	store := memory.NewStore()
	id, err := store.CreateMessage(context.Background(), anon.Message{Sender: 111, Recipient: 222, RoomKey: anon.RoomKey(111, 222), Kind: anon.KindText})
	require.NoError(t, err)

	sink := &textSink{texts: map[int64][]string{}}
	disclose := usecase.NewDiscloseSenderUseCase(store, sink, enLocale{}, nil)
	q := qadapter.NewInline(nil)
	RegisterConfirmPurchaseTask(q, usecase.NewConfirmPurchaseUseCase(store, disclose), sink, enLocale{}, nil)
	return q, store, sink, id
}

func enqueue(t *testing.T, q qport.Client, p ConfirmPurchaseTaskPayload) error {
	t.Helper()
	task, opts, err := NewConfirmPurchaseTask(p)
	require.NoError(t, err)
	_, err = q.Enqueue(context.Background(), task, opts)
	return err
}

func TestConfirmPurchaseTask_AppliesAndDiscloses(t *testing.T) {
	q, store, sink, id := setup(t)
	at := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	err := enqueue(t, q, ConfirmPurchaseTaskPayload{Payload: anon.RevealPayload(id), PayerID: 222, Stars: 50, ChargeID: "ch1", At: at})
	require.NoError(t, err)

	m, err := store.GetMessage(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, m.Reveal.Purchased)
	assert.Equal(t, "ch1", m.Reveal.ChargeID)
	require.Len(t, sink.texts[222], 1)
	assert.Contains(t, sink.texts[222][0], "ID: 111")
}

func TestConfirmPurchaseTask_WrongPayerIsReportedNotRetried(t *testing.T) {
	q, store, sink, id := setup(t)

	err := enqueue(t, q, ConfirmPurchaseTaskPayload{Payload: anon.RevealPayload(id), PayerID: 333, ChargeID: "ch2"})
	assert.True(t, errors.Is(err, qport.ErrSkipRetry))
	assert.Equal(t, []string{"Only the recipient of this message can reveal its sender."}, sink.texts[333])

	m, err := store.GetMessage(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, m.Reveal.Purchased)
}

func TestNewConfirmPurchaseTask_Options(t *testing.T) {
	task, opts, err := NewConfirmPurchaseTask(ConfirmPurchaseTaskPayload{Payload: "reveal:1", ChargeID: "c"})
	require.NoError(t, err)
	assert.Equal(t, ConfirmPurchaseTaskType, task.Type)
	assert.Equal(t, 5, opts.MaxRetry)
	assert.Equal(t, "reveal", opts.Queue)

	assert.Equal(t, "reveal:c", opts.TaskID)

	var p ConfirmPurchaseTaskPayload
	require.NoError(t, json.Unmarshal(task.Payload, &p))
	assert.Equal(t, "c", p.ChargeID)

	_, opts, err = NewConfirmPurchaseTask(ConfirmPurchaseTaskPayload{Payload: "reveal:1"})
	require.NoError(t, err)
	assert.Empty(t, opts.TaskID)
}

func TestConfirmPurchaseTask_RedeliveredChargeDisclosesOnce(t *testing.T) {
	q, _, sink, id := setup(t)
	at := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	p := ConfirmPurchaseTaskPayload{Payload: anon.RevealPayload(id), PayerID: 222, Stars: 50, ChargeID: "ch-1", At: at}

	first, firstOpts, err := NewConfirmPurchaseTask(p)
	require.NoError(t, err)
	p.At = at.Add(2 * time.Second)
	second, secondOpts, err := NewConfirmPurchaseTask(p)
	require.NoError(t, err)

	assert.NotEqual(t, first.Payload, second.Payload)
	assert.Equal(t, firstOpts.TaskID, secondOpts.TaskID)

	_, err = q.Enqueue(context.Background(), first, firstOpts)
	require.NoError(t, err)
	_, err = q.Enqueue(context.Background(), second, secondOpts)
	require.NoError(t, err)
	assert.Len(t, sink.texts[222], 1)
}
