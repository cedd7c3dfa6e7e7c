package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/metrics"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type ConfirmPurchaseInput struct {
	Payload string
	Proof   repository.PurchaseProof
}

type ConfirmPurchaseResult struct {
	MessageID int64
	// FirstConfirmation is false for replays of an already applied purchase.
	FirstConfirmation bool
}

// ConfirmPurchaseUseCase applies a payment confirmation and discloses the sender.
type ConfirmPurchaseUseCase struct {
	Messages repository.MessageRepository
	Disclose *DiscloseSenderUseCase
}

func NewConfirmPurchaseUseCase(messages repository.MessageRepository, disclose *DiscloseSenderUseCase) *ConfirmPurchaseUseCase {
	return &ConfirmPurchaseUseCase{Messages: messages, Disclose: disclose}
}

// Execute flips the reveal record with a single conditional update. When
// nothing matched and the payer is the recipient, the purchase was already
// applied and the sender is disclosed again without touching the record.
func (uc *ConfirmPurchaseUseCase) Execute(ctx context.Context, in ConfirmPurchaseInput) (*ConfirmPurchaseResult, error) {
	id, err := anon.ParseRevealPayload(in.Payload)
	if err != nil {
		metrics.RevealOutcomes.WithLabelValues("invalid_payload").Inc()
		return nil, err
	}

	res := &ConfirmPurchaseResult{MessageID: id}
	msg, err := uc.Messages.MarkPurchased(ctx, id, in.Proof)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if msg != nil {
		res.FirstConfirmation = true
		metrics.RevealOutcomes.WithLabelValues("purchased").Inc()
	} else {
		msg, err = uc.Messages.GetMessage(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RevealOutcomes.WithLabelValues("not_found").Inc()
			return nil, anon.ErrMessageNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if msg.Recipient != in.Proof.PayerID {
			metrics.RevealOutcomes.WithLabelValues("not_recipient").Inc()
			return nil, anon.ErrNotRecipient
		}
		metrics.RevealOutcomes.WithLabelValues("replayed").Inc()
	}

	if err := uc.Disclose.Execute(ctx, DiscloseSenderInput{OwnerID: in.Proof.PayerID, Message: *msg}); err != nil {
		return res, err
	}
	return res, nil
}
