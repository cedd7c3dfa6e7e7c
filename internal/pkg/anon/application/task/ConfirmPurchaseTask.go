package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	qport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/queue/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// ConfirmPurchaseTaskType is the queue task name for applying a Stars payment.
const ConfirmPurchaseTaskType = "reveal:confirm_purchase"

const (
	confirmQueue    = "reveal"
	confirmMaxRetry = 5
	confirmUnique   = 24 * time.Hour
	confirmTaskID   = "reveal:"
)

// ConfirmPurchaseTaskPayload is the JSON payload transported via the queue.
type ConfirmPurchaseTaskPayload struct {
	Payload          string    `json:"payload"`
	PayerID          int64     `json:"payerId"`
	PayerLang        string    `json:"payerLang,omitempty"`
	Stars            int       `json:"stars"`
	ChargeID         string    `json:"chargeId"`
	ProviderChargeID string    `json:"providerChargeId"`
	At               time.Time `json:"at"`
}

// NewConfirmPurchaseTask builds the task and its enqueue options. The task id
// is derived from the charge id, so a redelivered confirmation of the same
// charge is dropped by the queue for as long as the task is retained.
func NewConfirmPurchaseTask(p ConfirmPurchaseTaskPayload) (qport.Task, qport.EnqueueOption, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return qport.Task{}, qport.EnqueueOption{}, err
	}
	opts := qport.EnqueueOption{Queue: confirmQueue, MaxRetry: confirmMaxRetry, UniqueTTL: confirmUnique}
	if p.ChargeID != "" {
		opts.TaskID = confirmTaskID + p.ChargeID
		opts.Retention = confirmUnique
	}
	return qport.Task{Type: ConfirmPurchaseTaskType, Payload: b}, opts, nil
}

// RegisterConfirmPurchaseTask binds the task handler to the provided server.
// Payment problems the payer can act on are reported to them and not retried.
func RegisterConfirmPurchaseTask(srv qport.Server, uc *usecase.ConfirmPurchaseUseCase, m msgport.Messenger, locale usecase.LocaleResolver, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	srv.Register(ConfirmPurchaseTaskType, func(ctx context.Context, t qport.Task) error {
		var p ConfirmPurchaseTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return fmt.Errorf("%w: %v", qport.ErrSkipRetry, err)
		}

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		res, err := uc.Execute(ctx, usecase.ConfirmPurchaseInput{
			Payload: p.Payload,
			Proof: repository.PurchaseProof{
				PayerID:          p.PayerID,
				Stars:            p.Stars,
				ChargeID:         p.ChargeID,
				ProviderChargeID: p.ProviderChargeID,
				At:               p.At,
			},
		})
		if key := payerMessage(err); key != "" {
			lang := locale.Resolve(ctx, p.PayerID, p.PayerLang)
			if _, sendErr := m.SendText(ctx, p.PayerID, i18n.T(lang, key), nil, nil); sendErr != nil {
				logger.Warn("confirm_purchase_report_failed", "payer_id", p.PayerID, "err", sendErr)
			}
			logger.Warn("confirm_purchase_rejected", "payer_id", p.PayerID, "payload", p.Payload, "err", err)
			return fmt.Errorf("%w: %v", qport.ErrSkipRetry, err)
		}
		if err != nil {
			return err
		}
		logger.Info("confirm_purchase_applied", "message_id", res.MessageID, "first", res.FirstConfirmation, "charge_id", p.ChargeID)
		return nil
	})
}

func payerMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, anon.ErrInvalidPayload):
		return "payment_invalid"
	case errors.Is(err, anon.ErrMessageNotFound):
		return "message_not_found"
	case errors.Is(err, anon.ErrNotRecipient):
		return "payment_not_allowed"
	default:
		return ""
	}
}
