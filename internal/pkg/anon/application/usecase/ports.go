package usecase

import (
	"context"
	"time"
)

// LocaleResolver yields the language code a user should be addressed in.
type LocaleResolver interface {
	Resolve(ctx context.Context, userID int64, hint string) string
}

// Clock is overridable in tests.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
