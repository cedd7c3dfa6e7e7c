// Package locale resolves the language a user should be addressed in.
package locale

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	cacheport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/cache/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
)

const DefaultTTL = 6 * time.Hour

// Resolver caches resolved language codes per user on top of the user repository.
type Resolver struct {
	cache  cacheport.Cache
	users  repository.UserRepository
	ttl    time.Duration
	logger *slog.Logger
}

func NewResolver(cache cacheport.Cache, users repository.UserRepository, ttl time.Duration, logger *slog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cache: cache, users: users, ttl: ttl, logger: logger}
}

func cacheKey(userID int64) string { return "lang:" + strconv.FormatInt(userID, 10) }

// Resolve returns the user's language. An explicit choice wins, then the
// platform hint, then the stored platform language. Lookup failures degrade
// to the hint rather than erroring.
func (r *Resolver) Resolve(ctx context.Context, userID int64, hint string) string {
	if userID == 0 {
		return i18n.Normalize(hint)
	}
	if v, err := r.cache.Get(ctx, cacheKey(userID)); err == nil && v != "" {
		return v
	} else if err != nil && !errors.Is(err, cacheport.ErrMiss) {
		r.logger.Warn("locale_cache_get_failed", "user_id", userID, "err", err)
	}

	u, err := r.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Warn("locale_lookup_failed", "user_id", userID, "err", err)
			return i18n.Normalize(hint)
		}
		u = nil
	}

	resolved := i18n.Normalize(pick(u, hint))
	r.Remember(ctx, userID, resolved)
	return resolved
}

func pick(u *anon.User, hint string) string {
	switch {
	case u != nil && u.LangSelected && u.Lang != "":
		return u.Lang
	case hint != "":
		return hint
	case u != nil:
		return u.TelegramLang
	default:
		return ""
	}
}

// Remember stores lang for userID, e.g. right after an explicit choice.
func (r *Resolver) Remember(ctx context.Context, userID int64, lang string) {
	if err := r.cache.Set(ctx, cacheKey(userID), i18n.Normalize(lang), r.ttl); err != nil {
		r.logger.Warn("locale_cache_set_failed", "user_id", userID, "err", err)
	}
}
