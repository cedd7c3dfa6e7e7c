package repository

import (
	"context"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
)

// SummaryRepository maintains the per-room latest-activity projection.
type SummaryRepository interface {
	// UpsertSummaryIfNewer writes s unless the stored row already points at a
	// message id >= s.LastMessageID. It reports whether the row changed.
	UpsertSummaryIfNewer(ctx context.Context, s anon.ConversationSummary) (bool, error)
	ListSummaries(ctx context.Context, limit int) ([]anon.ConversationSummary, error)
}
