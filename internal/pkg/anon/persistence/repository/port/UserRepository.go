package repository

import (
	"context"
	"errors"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
)

// ErrNotFound is returned by adapters when a keyed lookup matches nothing.
var ErrNotFound = errors.New("repository: not found")

// UserRepository keeps the identity cache of everyone who touched the bot.
type UserRepository interface {
	// UpsertUser refreshes profile fields. Lang and LangSelected are left untouched on conflict.
	UpsertUser(ctx context.Context, u anon.User) error
	GetUser(ctx context.Context, id int64) (*anon.User, error)
	GetUsers(ctx context.Context, ids []int64) (map[int64]anon.User, error)
	// SetUserLang records an explicit language choice.
	SetUserLang(ctx context.Context, id int64, lang string) error
}
