package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/metrics"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

type MirrorReactionInput struct {
	At      anon.Locator
	ActorID int64
	// Emoji is the actor's current reaction; empty when it was removed.
	Emoji string
}

// MirrorOutcome names what happened to one reaction event.
type MirrorOutcome string

const (
	MirrorApplied     MirrorOutcome = "mirrored"
	MirrorIgnoredSelf MirrorOutcome = "ignored_self"
	MirrorUnmatched   MirrorOutcome = "unmatched"
	MirrorNoTarget    MirrorOutcome = "no_target"
	MirrorFailed      MirrorOutcome = "failed"
)

// MirrorReactionUseCase keeps the two copies of a message showing the same latest reaction.
type MirrorReactionUseCase struct {
	Messages  repository.MessageRepository
	Messenger msgport.Messenger
	Logger    *slog.Logger
}

func NewMirrorReactionUseCase(messages repository.MessageRepository, m msgport.Messenger, logger *slog.Logger) *MirrorReactionUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorReactionUseCase{Messages: messages, Messenger: m, Logger: logger}
}

// Execute stores the reacting side's slot and re-applies it on the opposite copy.
// Events authored by the bot itself are dropped so mirror writes never echo.
// The mirror call is best effort: its failure is logged and not returned.
func (uc *MirrorReactionUseCase) Execute(ctx context.Context, in MirrorReactionInput) (MirrorOutcome, error) {
	outcome, err := uc.execute(ctx, in)
	if outcome != "" {
		metrics.ReactionMirrors.WithLabelValues(string(outcome)).Inc()
	}
	return outcome, err
}

func (uc *MirrorReactionUseCase) execute(ctx context.Context, in MirrorReactionInput) (MirrorOutcome, error) {
	// An unresolved bot id matches no actor; the event is still stored.
	self, err := uc.Messenger.Self(ctx)
	if err != nil {
		uc.Logger.Warn("reaction_self_unknown", "err", err)
		self = 0
	}
	if self != 0 && in.ActorID == self {
		return MirrorIgnoredSelf, nil
	}

	msg, side, err := uc.locate(ctx, in.At)
	if errors.Is(err, repository.ErrNotFound) {
		return MirrorUnmatched, nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	reactions := msg.Reactions
	reactions.Set(side, in.Emoji)
	if err := uc.Messages.SetReactions(ctx, msg.ID, reactions); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	target := msg.Locator(side.Opposite())
	if target.IsZero() {
		uc.Logger.Info("reaction_mirror_no_target", "message_id", msg.ID, "side", side.String())
		return MirrorNoTarget, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, DefaultSendTimeout)
	defer cancel()
	if err := uc.Messenger.SetReaction(callCtx, msgport.Ref{ChatID: target.ChatID, MessageID: target.MessageID}, in.Emoji); err != nil {
		uc.Logger.Warn("reaction_mirror_failed", "message_id", msg.ID, "side", side.Opposite().String(), "err", err)
		return MirrorFailed, nil
	}
	return MirrorApplied, nil
}

// locate checks the delivered copy first, then the origin copy.
func (uc *MirrorReactionUseCase) locate(ctx context.Context, at anon.Locator) (*anon.Message, anon.Side, error) {
	if at.IsZero() {
		return nil, 0, repository.ErrNotFound
	}
	for _, side := range []anon.Side{anon.SideDelivered, anon.SideOrigin} {
		msg, err := uc.Messages.FindByLocator(ctx, at, side)
		if err == nil {
			return msg, side, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, 0, err
		}
	}
	return nil, 0, repository.ErrNotFound
}
