package adapter

import (
	"context"
	"errors"

	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

var _ repository.UserRepository = (*PgUserRepository)(nil)

var errNilPool = errors.New("pg repository: nil pool")

func (r *PgUserRepository) UpsertUser(ctx context.Context, u anon.User) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO anon.users (user_id, first_name, last_name, username, telegram_lang, lang, lang_selected, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (user_id)
		DO UPDATE SET first_name = EXCLUDED.first_name,
		              last_name = EXCLUDED.last_name,
		              username = EXCLUDED.username,
		              telegram_lang = EXCLUDED.telegram_lang,
		              updated_at = now()
	`, u.ID, u.FirstName, u.LastName, u.Username, u.TelegramLang, u.Lang, u.LangSelected)
	return err
}

func (r *PgUserRepository) GetUser(ctx context.Context, id int64) (*anon.User, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	var u anon.User
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, first_name, last_name, username, telegram_lang, lang, lang_selected
		FROM anon.users WHERE user_id = $1
	`, id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.TelegramLang, &u.Lang, &u.LangSelected)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) GetUsers(ctx context.Context, ids []int64) (map[int64]anon.User, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	out := make(map[int64]anon.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, first_name, last_name, username, telegram_lang, lang, lang_selected
		FROM anon.users WHERE user_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u anon.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.TelegramLang, &u.Lang, &u.LangSelected); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r *PgUserRepository) SetUserLang(ctx context.Context, id int64, lang string) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO anon.users (user_id, lang, lang_selected, created_at, updated_at)
		VALUES ($1, $2, TRUE, now(), now())
		ON CONFLICT (user_id)
		DO UPDATE SET lang = EXCLUDED.lang, lang_selected = TRUE, updated_at = now()
	`, id, lang)
	return err
}
