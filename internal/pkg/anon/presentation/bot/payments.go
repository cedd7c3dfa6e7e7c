package bot

import (
	"context"
	"errors"
	"time"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/metrics"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/task"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

// onPreCheckout approves only invoices this bot issued: a reveal payload for a
// message the payer received, in Stars, for the configured price.
func (d *Dispatcher) onPreCheckout(ctx context.Context, q *msgport.PreCheckout) {
	key := d.checkInvoice(ctx, q)
	if key == "" {
		if err := d.messenger.AnswerPreCheckout(ctx, q.ID, true, ""); err != nil {
			d.logger.Error("pre_checkout_answer_failed", "query_id", q.ID, "err", err)
		}
		return
	}
	metrics.RevealOutcomes.WithLabelValues("pre_checkout_rejected").Inc()
	d.logger.Warn("pre_checkout_rejected", "payer_id", q.From.ID, "payload", q.Payload, "reason", key)
	if err := d.messenger.AnswerPreCheckout(ctx, q.ID, false, i18n.T(d.lang(ctx, q.From), key)); err != nil {
		d.logger.Error("pre_checkout_answer_failed", "query_id", q.ID, "err", err)
	}
}

func (d *Dispatcher) checkInvoice(ctx context.Context, q *msgport.PreCheckout) string {
	id, err := anon.ParseRevealPayload(q.Payload)
	if err != nil || q.Currency != usecase.StarsCurrency || q.Amount != d.opts.RevealStars {
		return "payment_invalid"
	}
	msg, err := d.messages.GetMessage(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "message_not_found"
	case err != nil:
		d.logger.Error("pre_checkout_lookup_failed", "message_id", id, "err", err)
		return "error_generic"
	case msg.Recipient != q.From.ID:
		return "payment_not_allowed"
	}
	return ""
}

// paidAt prefers the platform's timestamp on the payment message.
func paidAt(m *msgport.InboundMessage, now func() time.Time) time.Time {
	if !m.SentAt.IsZero() {
		return m.SentAt
	}
	return now()
}

// onPayment hands a completed purchase to the confirmation queue.
func (d *Dispatcher) onPayment(ctx context.Context, m *msgport.InboundMessage) {
	p := m.Payment
	t, opts, err := task.NewConfirmPurchaseTask(task.ConfirmPurchaseTaskPayload{
		Payload:          p.Payload,
		PayerID:          m.From.ID,
		PayerLang:        m.From.LanguageCode,
		Stars:            p.Amount,
		ChargeID:         p.ChargeID,
		ProviderChargeID: p.ProviderChargeID,
		At:               paidAt(m, d.now),
	})
	if err != nil {
		d.logger.Error("confirm_purchase_encode_failed", "payer_id", m.From.ID, "err", err)
		return
	}
	id, err := d.queue.Enqueue(ctx, t, opts)
	if err != nil {
		d.logger.Error("confirm_purchase_enqueue_failed", "payer_id", m.From.ID, "charge_id", p.ChargeID, "err", err)
		d.say(ctx, m.From, "error_generic")
		return
	}
	d.logger.Info("confirm_purchase_enqueued", "task_id", id, "payer_id", m.From.ID, "charge_id", p.ChargeID)
}
