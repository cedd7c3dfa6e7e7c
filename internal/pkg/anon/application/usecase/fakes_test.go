package usecase

import (
	"context"
	"errors"
	"sync"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
)

const botID int64 = 999

var errSend = errors.New("send failed")

type sentText struct {
	ChatID int64
	Text   string
	Markup msgport.Markup
}

type setReaction struct {
	Target msgport.Ref
	Emoji  string
}

// fakeMessenger records outbound calls and assigns increasing message ids per chat.
type fakeMessenger struct {
	mu sync.Mutex

	failCopy, failText, failMedia, failReaction bool
	// failTextFor fails SendText only for the listed chats.
	failTextFor map[int64]bool

	nextID    int
	copies    []msgport.Ref
	texts     []sentText
	media     []msgport.Media
	reactions []setReaction
	invoices  []msgport.Invoice
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 100, failTextFor: map[int64]bool{}}
}

var _ msgport.Messenger = (*fakeMessenger)(nil)

func (f *fakeMessenger) ref(chatID int64) msgport.Ref {
	f.nextID++
	return msgport.Ref{ChatID: chatID, MessageID: f.nextID}
}

func (f *fakeMessenger) Copy(_ context.Context, chatID int64, from msgport.Ref, _ msgport.Markup) (msgport.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCopy {
		return msgport.Ref{}, errSend
	}
	f.copies = append(f.copies, from)
	return f.ref(chatID), nil
}

func (f *fakeMessenger) SendText(_ context.Context, chatID int64, text string, _ []msgport.Entity, markup msgport.Markup) (msgport.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failText || f.failTextFor[chatID] {
		return msgport.Ref{}, errSend
	}
	f.texts = append(f.texts, sentText{ChatID: chatID, Text: text, Markup: markup})
	return f.ref(chatID), nil
}

func (f *fakeMessenger) SendMedia(_ context.Context, chatID int64, m msgport.Media, _ msgport.Markup) (msgport.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMedia {
		return msgport.Ref{}, errSend
	}
	f.media = append(f.media, m)
	return f.ref(chatID), nil
}

func (f *fakeMessenger) SetReaction(_ context.Context, target msgport.Ref, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReaction {
		return errSend
	}
	f.reactions = append(f.reactions, setReaction{Target: target, Emoji: emoji})
	return nil
}

func (f *fakeMessenger) SendInvoice(_ context.Context, inv msgport.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoices = append(f.invoices, inv)
	return nil
}

func (f *fakeMessenger) AnswerCallback(context.Context, string, string) error { return nil }

func (f *fakeMessenger) AnswerPreCheckout(context.Context, string, bool, string) error { return nil }

func (f *fakeMessenger) Self(context.Context) (int64, error) { return botID, nil }

func (f *fakeMessenger) textsTo(chatID int64) []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentText
	for _, t := range f.texts {
		if t.ChatID == chatID {
			out = append(out, t)
		}
	}
	return out
}

type staticLocale string

func (s staticLocale) Resolve(context.Context, int64, string) string { return string(s) }

func (s staticLocale) Remember(context.Context, int64, string) {}
