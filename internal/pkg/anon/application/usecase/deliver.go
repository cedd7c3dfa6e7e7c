package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
)

// DefaultSendTimeout bounds every outbound delivery call.
const DefaultSendTimeout = 15 * time.Second

// DeliveryTier is the rung of the fallback ladder that delivered an item.
type DeliveryTier int

const (
	TierNone DeliveryTier = iota
	TierVerbatim
	TierRebuilt
	TierPlaceholder
)

func (t DeliveryTier) String() string {
	switch t {
	case TierVerbatim:
		return "verbatim"
	case TierRebuilt:
		return "rebuilt"
	case TierPlaceholder:
		return "placeholder"
	default:
		return "failed"
	}
}

var errNoRebuild = errors.New("no structured rebuild for kind")

// Deliverer walks the fallback ladder: verbatim copy, per-kind rebuild, text placeholder.
// A failed tier is never retried; the next tier is the retry.
type Deliverer struct {
	Messenger msgport.Messenger
	Timeout   time.Duration
	Logger    *slog.Logger
}

func NewDeliverer(m msgport.Messenger, timeout time.Duration, logger *slog.Logger) *Deliverer {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deliverer{Messenger: m, Timeout: timeout, Logger: logger}
}

// Deliver sends c to chatID. placeholder is the text used by the last tier.
func (d *Deliverer) Deliver(ctx context.Context, chatID int64, c anon.Content, placeholder string, markup msgport.Markup) (anon.Locator, DeliveryTier, error) {
	if !c.Origin.IsZero() {
		ref, err := d.try(ctx, func(ctx context.Context) (msgport.Ref, error) {
			return d.Messenger.Copy(ctx, chatID, msgport.Ref{ChatID: c.Origin.ChatID, MessageID: c.Origin.MessageID}, markup)
		})
		if err == nil {
			return locatorOf(ref), TierVerbatim, nil
		}
		d.Logger.Warn("delivery_tier_failed", "tier", TierVerbatim.String(), "kind", c.Kind, "to", chatID, "err", err)
	}

	ref, err := d.try(ctx, func(ctx context.Context) (msgport.Ref, error) {
		return d.rebuild(ctx, chatID, c, markup)
	})
	if err == nil {
		return locatorOf(ref), TierRebuilt, nil
	}
	if !errors.Is(err, errNoRebuild) {
		d.Logger.Warn("delivery_tier_failed", "tier", TierRebuilt.String(), "kind", c.Kind, "to", chatID, "err", err)
	}

	ref, err = d.try(ctx, func(ctx context.Context) (msgport.Ref, error) {
		return d.Messenger.SendText(ctx, chatID, placeholder, nil, markup)
	})
	if err == nil {
		return locatorOf(ref), TierPlaceholder, nil
	}
	d.Logger.Error("delivery_tier_failed", "tier", TierPlaceholder.String(), "kind", c.Kind, "to", chatID, "err", err)
	return anon.Locator{}, TierNone, err
}

func (d *Deliverer) try(ctx context.Context, fn func(context.Context) (msgport.Ref, error)) (msgport.Ref, error) {
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	return fn(ctx)
}

func (d *Deliverer) rebuild(ctx context.Context, chatID int64, c anon.Content, markup msgport.Markup) (msgport.Ref, error) {
	switch c.Kind.Rebuild() {
	case anon.RebuildText:
		if c.Text == "" {
			return msgport.Ref{}, errNoRebuild
		}
		return d.Messenger.SendText(ctx, chatID, c.Text, toPortEntities(c.Entities), markup)
	case anon.RebuildCaptionedMedia:
		if c.Media.FileID == "" {
			return msgport.Ref{}, errNoRebuild
		}
		return d.Messenger.SendMedia(ctx, chatID, msgport.Media{
			Kind:            msgport.MediaKind(c.Kind),
			FileID:          c.Media.FileID,
			Caption:         c.Text,
			CaptionEntities: toPortEntities(c.Entities),
		}, markup)
	case anon.RebuildBareMedia:
		if c.Media.FileID == "" {
			return msgport.Ref{}, errNoRebuild
		}
		return d.Messenger.SendMedia(ctx, chatID, msgport.Media{Kind: msgport.MediaKind(c.Kind), FileID: c.Media.FileID}, markup)
	default:
		return msgport.Ref{}, errNoRebuild
	}
}

func locatorOf(r msgport.Ref) anon.Locator {
	return anon.Locator{ChatID: r.ChatID, MessageID: r.MessageID}
}

func toPortEntities(in []anon.Entity) []msgport.Entity {
	if len(in) == 0 {
		return nil
	}
	out := make([]msgport.Entity, len(in))
	for i, e := range in {
		out[i] = msgport.Entity{
			Type:          e.Type,
			Offset:        e.Offset,
			Length:        e.Length,
			URL:           e.URL,
			Language:      e.Language,
			CustomEmojiID: e.CustomEmojiID,
		}
	}
	return out
}
