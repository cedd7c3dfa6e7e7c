package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheadapter "github.com/humoyun-dev/anonim-chat/internal/infrastructure/cache/adapter"
	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	qadapter "github.com/humoyun-dev/anonim-chat/internal/infrastructure/queue/adapter"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/guard"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/locale"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/task"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/memory"
)

const (
	owner   int64 = 100
	visitor int64 = 200
)

type outgoing struct {
	chatID int64
	text   string
	markup msgport.Markup
}

type recorder struct {
	mu        sync.Mutex
	next      int
	out       []outgoing
	invoices  []msgport.Invoice
	checkouts map[string]bool
	answered  []string
}

func newRecorder() *recorder { return &recorder{checkouts: map[string]bool{}} }

var _ msgport.Messenger = (*recorder)(nil)

func (r *recorder) ref(chatID int64) msgport.Ref {
	r.next++
	return msgport.Ref{ChatID: chatID, MessageID: 1000 + r.next}
}

func (r *recorder) Copy(_ context.Context, chatID int64, _ msgport.Ref, markup msgport.Markup) (msgport.Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, outgoing{chatID: chatID, text: "<copy>", markup: markup})
	return r.ref(chatID), nil
}

func (r *recorder) SendText(_ context.Context, chatID int64, text string, _ []msgport.Entity, markup msgport.Markup) (msgport.Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, outgoing{chatID: chatID, text: text, markup: markup})
	return r.ref(chatID), nil
}

func (r *recorder) SendMedia(_ context.Context, chatID int64, m msgport.Media, markup msgport.Markup) (msgport.Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, outgoing{chatID: chatID, text: "<" + string(m.Kind) + ">", markup: markup})
	return r.ref(chatID), nil
}

func (r *recorder) SetReaction(context.Context, msgport.Ref, string) error { return nil }

func (r *recorder) SendInvoice(_ context.Context, inv msgport.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices = append(r.invoices, inv)
	return nil
}

func (r *recorder) AnswerCallback(_ context.Context, id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answered = append(r.answered, id+":"+text)
	return nil
}

func (r *recorder) AnswerPreCheckout(_ context.Context, id string, ok bool, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts[id] = ok
	return nil
}

func (r *recorder) Self(context.Context) (int64, error) { return 1, nil }

func (r *recorder) to(chatID int64) []outgoing {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []outgoing
	for _, o := range r.out {
		if o.chatID == chatID {
			out = append(out, o)
		}
	}
	return out
}

func (r *recorder) last(t *testing.T, chatID int64) outgoing {
	t.Helper()
	out := r.to(chatID)
	require.NotEmpty(t, out, "nothing sent to %d", chatID)
	return out[len(out)-1]
}

func callbacks(m msgport.Markup) []string {
	var out []string
	for _, row := range m {
		for _, b := range row {
			out = append(out, b.CallbackData)
		}
	}
	return out
}

type harness struct {
	store *memory.Store
	msgr  *recorder
	d     *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	msgr := newRecorder()
	loc := locale.NewResolver(cacheadapter.NewMemoryCache(), store, time.Hour, nil)
	queue := qadapter.NewInline(nil)

	disclose := usecase.NewDiscloseSenderUseCase(store, msgr, loc, nil)
	task.RegisterConfirmPurchaseTask(queue, usecase.NewConfirmPurchaseUseCase(store, disclose), msgr, loc, nil)

	uc := UseCases{
		Record:   usecase.NewRecordUserUseCase(store),
		Join:     usecase.NewJoinAsAnonUseCase(store),
		Reply:    usecase.NewEnterReplyModeUseCase(store, store),
		Resolve:  usecase.NewResolveRecipientUseCase(store, usecase.DefaultReplyTTL),
		Relay:    usecase.NewRelayMessageUseCase(store, store, store, usecase.NewDeliverer(msgr, time.Second, nil), loc, 50, nil),
		Cancel:   usecase.NewCancelReplyUseCase(store),
		Reveal:   usecase.NewRequestRevealUseCase(store, disclose, 50),
		AskAgain: usecase.NewAskAgainUseCase(store, msgr, loc, nil),
		SetLang:  usecase.NewSetLanguageUseCase(store, loc),
		Mirror:   usecase.NewMirrorReactionUseCase(store, msgr, nil),
	}
	g := guard.New(guard.Options{Window: 10 * time.Second, MaxMessages: 5, StaleAfter: time.Hour, BannedWords: []string{"casino"}})
	d := NewDispatcher(uc, msgr, store, queue, g, loc, Options{BotUsername: "anon_bot", RevealStars: 50}, nil)
	return &harness{store: store, msgr: msgr, d: d}
}

func sender(id int64) msgport.Sender {
	return msgport.Sender{ID: id, FirstName: "User", LanguageCode: "en"}
}

func (h *harness) text(from int64, msgID int, text string) {
	h.d.Handle(context.Background(), msgport.Event{Message: &msgport.InboundMessage{
		Ref:  msgport.Ref{ChatID: from, MessageID: msgID},
		From: sender(from),
		Kind: "text",
		Text: text,
	}})
}

func (h *harness) press(from int64, data string) {
	h.d.Handle(context.Background(), msgport.Event{Callback: &msgport.Callback{ID: "cb", From: sender(from), Data: data}})
}

func TestParseCommand(t *testing.T) {
	cases := []struct{ in, name, arg string }{
		{"/start", "start", ""},
		{"/start owner_42", "start", "owner_42"},
		{"/Start@anon_bot  reveal_7 ", "start", "reveal_7"},
		{"/getlink@anon_bot", "getlink", ""},
	}
	for _, c := range cases {
		name, arg := parseCommand(c.in)
		assert.Equal(t, c.name, name, c.in)
		assert.Equal(t, c.arg, arg, c.in)
	}
}

func TestStart_DeepLinkPairsAndRelays(t *testing.T) {
	h := newHarness(t)

	h.text(visitor, 1, "/start "+anon.StartParam(owner))
	assert.Equal(t, "Connected! Send one message and it will reach the owner anonymously.", h.msgr.last(t, visitor).text)
	assert.Equal(t, "Someone opened your link and may write to you soon.", h.msgr.last(t, owner).text)

	h.text(visitor, 2, "hello there")
	toOwner := h.msgr.to(owner)
	require.Len(t, toOwner, 2)
	assert.Equal(t, "<copy>", toOwner[1].text)
	assert.Equal(t, []string{"reply:200", "reveal:1"}, callbacks(toOwner[1].markup))
	assert.Equal(t, "Your message was delivered anonymously.", h.msgr.last(t, visitor).text)

	// single shot: the session is gone
	h.text(visitor, 3, "again?")
	assert.Contains(t, h.msgr.last(t, visitor).text, "You are not connected")
}

func TestStart_OwnLinkAndBadParam(t *testing.T) {
	h := newHarness(t)

	h.text(owner, 1, "/start "+anon.StartParam(owner))
	out := h.msgr.to(owner)
	require.Len(t, out, 2)
	assert.Contains(t, out[0].text, "your own link")
	assert.Contains(t, out[1].text, "https://t.me/anon_bot?start=owner_100")
	assert.Zero(t, h.store.SessionCount())

	h.text(owner, 2, "/start nonsense")
	assert.Equal(t, "This link is not valid.", h.msgr.last(t, owner).text)

	h.text(owner, 3, "/start reveal_x")
	assert.Equal(t, "This reveal link is not valid.", h.msgr.last(t, owner).text)
}

func TestStart_NoArgShowsMenu(t *testing.T) {
	h := newHarness(t)
	h.text(owner, 1, "/start")
	last := h.msgr.last(t, owner)
	assert.Contains(t, last.text, "https://t.me/anon_bot?start=owner_100")
	assert.Equal(t, []string{"menu:getlink", "menu:lang", "menu:help", "menu:paysupport"}, callbacks(last.markup))
}

func TestGuard_BlocksBannedAndFlood(t *testing.T) {
	h := newHarness(t)
	h.text(visitor, 1, "/start "+anon.StartParam(owner))
	before := len(h.msgr.to(owner))

	h.text(visitor, 2, "best CASINO in town")
	assert.Equal(t, "Your message was blocked. Slow down or rephrase.", h.msgr.last(t, visitor).text)
	assert.Len(t, h.msgr.to(owner), before)
	assert.Equal(t, 1, h.store.SessionCount())
}

func TestReplyFlow_OwnerAnswersAndAnonCanAskAgain(t *testing.T) {
	h := newHarness(t)
	h.text(visitor, 1, "/start "+anon.StartParam(owner))
	h.text(visitor, 2, "question")

	h.press(owner, anon.ReplyAction(visitor).Encode())
	last := h.msgr.last(t, owner)
	assert.Equal(t, "Write your reply. It will be sent to the anonymous sender.", last.text)
	assert.Equal(t, []string{"cancel_reply"}, callbacks(last.markup))

	h.text(owner, 10, "answer")
	toVisitor := h.msgr.to(visitor)
	var copied *outgoing
	for i := range toVisitor {
		if toVisitor[i].text == "<copy>" {
			copied = &toVisitor[i]
		}
	}
	require.NotNil(t, copied)
	assert.Equal(t, []string{"ask:100"}, callbacks(copied.markup))
	assert.Equal(t, "Your reply was sent.", h.msgr.last(t, owner).text)

	h.press(visitor, anon.AskAction(owner).Encode())
	assert.Equal(t, "You can write another message now.", h.msgr.last(t, visitor).text)
	assert.Equal(t, 1, h.store.SessionCount())
}

func TestReply_NotAllowedWithoutHistory(t *testing.T) {
	h := newHarness(t)
	h.press(owner, anon.ReplyAction(visitor).Encode())
	assert.Equal(t, "You can only reply to people who wrote to you.", h.msgr.last(t, owner).text)

	h.text(owner, 1, "/cancel")
	assert.Equal(t, "You are not replying to anyone.", h.msgr.last(t, owner).text)
}

func TestCallback_UnknownIsAnswered(t *testing.T) {
	h := newHarness(t)
	h.press(owner, "whatever:1")
	require.Len(t, h.msgr.answered, 1)
	assert.Equal(t, "cb:This button is no longer active.", h.msgr.answered[0])
}

func TestLanguageChoiceSticks(t *testing.T) {
	h := newHarness(t)
	h.text(owner, 1, "/lang")
	assert.Equal(t, []string{"lang:uz", "lang:ru", "lang:en"}, callbacks(h.msgr.last(t, owner).markup))

	h.press(owner, anon.LangAction("ru").Encode())
	u, err := h.store.GetUser(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, "ru", u.Lang)
	assert.True(t, u.LangSelected)

	h.text(owner, 2, "/cancel")
	assert.NotEqual(t, "You are not replying to anyone.", h.msgr.last(t, owner).text)
}

func TestRevealPurchase_EndToEnd(t *testing.T) {
	h := newHarness(t)
	h.text(visitor, 1, "/start "+anon.StartParam(owner))
	h.text(visitor, 2, "guess who")

	h.press(owner, anon.RevealAction(1).Encode())
	require.Len(t, h.msgr.invoices, 1)
	inv := h.msgr.invoices[0]
	assert.Equal(t, anon.RevealPayload(1), inv.Payload)

	check := func(id string, from int64, amount int) bool {
		h.d.Handle(context.Background(), msgport.Event{PreCheckout: &msgport.PreCheckout{
			ID: id, From: sender(from), Payload: inv.Payload, Currency: "XTR", Amount: amount,
		}})
		return h.msgr.checkouts[id]
	}
	assert.True(t, check("ok", owner, 50))
	assert.False(t, check("cheap", owner, 1))
	assert.False(t, check("stranger", visitor, 50))

	paid := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	pay := func(messageID int, at time.Time) {
		h.d.Handle(context.Background(), msgport.Event{Message: &msgport.InboundMessage{
			Ref:     msgport.Ref{ChatID: owner, MessageID: messageID},
			From:    sender(owner),
			Kind:    "unknown",
			SentAt:  at,
			Payment: &msgport.Payment{Payload: inv.Payload, Currency: "XTR", Amount: 50, ChargeID: "ch-1"},
		}})
	}
	pay(50, paid)
	last := h.msgr.last(t, owner)
	assert.Contains(t, last.text, "Sender revealed:")
	assert.Contains(t, last.text, "ID: 200")

	msg, err := h.store.GetMessage(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, msg.Reveal.Purchased)
	require.NotNil(t, msg.Reveal.PurchasedAt)
	assert.True(t, paid.Equal(*msg.Reveal.PurchasedAt))

	// the platform redelivers the same charge
	pay(51, paid.Add(3*time.Second))
	revealed := 0
	for _, o := range h.msgr.out {
		if o.chatID == owner && strings.Contains(o.text, "Sender revealed:") {
			revealed++
		}
	}
	assert.Equal(t, 1, revealed)
}

func TestHandle_RecoversFromPanics(t *testing.T) {
	d := NewDispatcher(UseCases{}, newRecorder(), nil, nil, nil, nil, Options{}, nil)
	assert.NotPanics(t, func() {
		d.Handle(context.Background(), msgport.Event{Message: &msgport.InboundMessage{From: sender(owner), Kind: "text", Text: "hi"}})
	})
}
