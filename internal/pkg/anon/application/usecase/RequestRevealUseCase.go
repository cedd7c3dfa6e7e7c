package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/metrics"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// StarsCurrency is the in-app currency code of Telegram Stars.
const StarsCurrency = "XTR"

type RequestRevealInput struct {
	OwnerID   int64
	MessageID int64
}

// RevealOutcome reports which branch RequestReveal took.
type RevealOutcome string

const (
	RevealInvoiced  RevealOutcome = "invoiced"
	RevealDisclosed RevealOutcome = "disclosed"
)

// RequestRevealUseCase issues a priced request to unmask a sender.
type RequestRevealUseCase struct {
	Messages  repository.MessageRepository
	Messenger msgport.Messenger
	Disclose  *DiscloseSenderUseCase
	Locale    LocaleResolver
	Stars     int
}

func NewRequestRevealUseCase(messages repository.MessageRepository, disclose *DiscloseSenderUseCase, stars int) *RequestRevealUseCase {
	return &RequestRevealUseCase{
		Messages:  messages,
		Messenger: disclose.Messenger,
		Disclose:  disclose,
		Locale:    disclose.Locale,
		Stars:     stars,
	}
}

// Execute discloses right away when the message was already bought and sends an invoice otherwise.
func (uc *RequestRevealUseCase) Execute(ctx context.Context, in RequestRevealInput) (RevealOutcome, error) {
	msg, err := uc.Messages.GetMessage(ctx, in.MessageID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RevealOutcomes.WithLabelValues("not_found").Inc()
		return "", anon.ErrMessageNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if msg.Recipient != in.OwnerID {
		metrics.RevealOutcomes.WithLabelValues("not_recipient").Inc()
		return "", anon.ErrNotRecipient
	}

	if msg.Reveal.Purchased {
		metrics.RevealOutcomes.WithLabelValues("already_purchased").Inc()
		return RevealDisclosed, uc.Disclose.Execute(ctx, DiscloseSenderInput{OwnerID: in.OwnerID, Message: *msg})
	}

	lang := uc.Locale.Resolve(ctx, in.OwnerID, "")
	inv := msgport.Invoice{
		ChatID:      in.OwnerID,
		Title:       i18n.T(lang, "invoice_title"),
		Description: i18n.T(lang, "invoice_desc", "stars", strconv.Itoa(uc.Stars)),
		Payload:     anon.RevealPayload(msg.ID),
		Currency:    StarsCurrency,
		Label:       i18n.T(lang, "invoice_price_label"),
		Amount:      uc.Stars,
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultSendTimeout)
	defer cancel()
	if err := uc.Messenger.SendInvoice(ctx, inv); err != nil {
		return "", err
	}
	metrics.RevealOutcomes.WithLabelValues("invoiced").Inc()
	return RevealInvoiced, nil
}
