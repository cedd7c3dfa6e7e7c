package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/memory"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type revealHarness struct {
	store   *memory.Store
	msgr    *fakeMessenger
	request *RequestRevealUseCase
	confirm *ConfirmPurchaseUseCase
	msgID   int64
}

func newRevealHarness(t *testing.T) *revealHarness {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	msgr := newFakeMessenger()
	disclose := NewDiscloseSenderUseCase(store, msgr, staticLocale("en"), nil)

	require.NoError(t, store.UpsertUser(ctx, anon.User{ID: 111, FirstName: "Ali", LastName: "Valiyev", Username: "ali"}))
	id, err := store.CreateMessage(ctx, anon.Message{Sender: 111, Recipient: 222, RoomKey: anon.RoomKey(111, 222), Kind: anon.KindText, Text: "hello"})
	require.NoError(t, err)

	return &revealHarness{
		store:   store,
		msgr:    msgr,
		request: NewRequestRevealUseCase(store, disclose, 50),
		confirm: NewConfirmPurchaseUseCase(store, disclose),
		msgID:   id,
	}
}

func proof(payer int64, charge string) repository.PurchaseProof {
	return repository.PurchaseProof{PayerID: payer, Stars: 50, ChargeID: charge, ProviderChargeID: "p-" + charge, At: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
}

func TestRequestReveal_SendsInvoice(t *testing.T) {
	h := newRevealHarness(t)

	outcome, err := h.request.Execute(context.Background(), RequestRevealInput{OwnerID: 222, MessageID: h.msgID})
	require.NoError(t, err)
	assert.Equal(t, RevealInvoiced, outcome)
	require.Len(t, h.msgr.invoices, 1)
	inv := h.msgr.invoices[0]
	assert.Equal(t, "XTR", inv.Currency)
	assert.Equal(t, 50, inv.Amount)
	assert.Equal(t, anon.RevealPayload(h.msgID), inv.Payload)
}

func TestRequestReveal_Rejections(t *testing.T) {
	h := newRevealHarness(t)

	_, err := h.request.Execute(context.Background(), RequestRevealInput{OwnerID: 222, MessageID: 404})
	assert.ErrorIs(t, err, anon.ErrMessageNotFound)

	_, err = h.request.Execute(context.Background(), RequestRevealInput{OwnerID: 333, MessageID: h.msgID})
	assert.ErrorIs(t, err, anon.ErrNotRecipient)
	assert.Empty(t, h.msgr.invoices)
}

func TestRequestReveal_AlreadyPurchasedDisclosesWithoutInvoice(t *testing.T) {
	ctx := context.Background()
	h := newRevealHarness(t)
	_, err := h.store.MarkPurchased(ctx, h.msgID, proof(222, "c1"))
	require.NoError(t, err)

	outcome, err := h.request.Execute(ctx, RequestRevealInput{OwnerID: 222, MessageID: h.msgID})
	require.NoError(t, err)
	assert.Equal(t, RevealDisclosed, outcome)
	assert.Empty(t, h.msgr.invoices)

	got := h.msgr.textsTo(222)
	require.Len(t, got, 1)
	assert.Equal(t, "Sender revealed:\nID: 111\nName: Ali Valiyev\nUsername: @ali", got[0].Text)
	assert.Equal(t, []string{"reply:111"}, buttons(got[0].Markup))
}

func TestConfirmPurchase_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newRevealHarness(t)
	in := ConfirmPurchaseInput{Payload: anon.RevealPayload(h.msgID), Proof: proof(222, "c1")}

	first, err := h.confirm.Execute(ctx, in)
	require.NoError(t, err)
	assert.True(t, first.FirstConfirmation)
	after, err := h.store.GetMessage(ctx, h.msgID)
	require.NoError(t, err)

	replay := in
	replay.Proof = proof(222, "c2")
	second, err := h.confirm.Execute(ctx, replay)
	require.NoError(t, err)
	assert.False(t, second.FirstConfirmation)

	again, err := h.store.GetMessage(ctx, h.msgID)
	require.NoError(t, err)
	assert.Equal(t, after.Reveal, again.Reveal, "reveal record is written once")
	assert.Equal(t, "c1", again.Reveal.ChargeID)
	assert.Len(t, h.msgr.textsTo(222), 2, "each confirmation discloses")
}

func TestConfirmPurchase_Rejections(t *testing.T) {
	ctx := context.Background()
	h := newRevealHarness(t)

	_, err := h.confirm.Execute(ctx, ConfirmPurchaseInput{Payload: "bogus", Proof: proof(222, "c")})
	assert.ErrorIs(t, err, anon.ErrInvalidPayload)

	_, err = h.confirm.Execute(ctx, ConfirmPurchaseInput{Payload: anon.RevealPayload(404), Proof: proof(222, "c")})
	assert.ErrorIs(t, err, anon.ErrMessageNotFound)

	_, err = h.confirm.Execute(ctx, ConfirmPurchaseInput{Payload: anon.RevealPayload(h.msgID), Proof: proof(333, "c")})
	assert.ErrorIs(t, err, anon.ErrNotRecipient)

	m, err := h.store.GetMessage(ctx, h.msgID)
	require.NoError(t, err)
	assert.False(t, m.Reveal.Purchased)
}

func TestDisclosureText_SkipsEmptyFields(t *testing.T) {
	assert.Equal(t, "Sender revealed:\nID: 42", DisclosureText("en", anon.User{ID: 42}))
}
