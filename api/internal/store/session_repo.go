package store

import (
	"context"
	"database/sql"
	"errors"
)

// SessionRepo — флаги сессии по чату в Postgres. Реализует session.FlagStore.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

func (r *SessionRepo) Get(ctx context.Context, chatID int64, key string) (string, bool, error) {
	const q = `select value from session_flags where chat_id=$1 and key=$2`
	var v string
	err := r.DB.QueryRowContext(ctx, q, chatID, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set сохраняет/обновляет флаг. PK: (chat_id, key).
func (r *SessionRepo) Set(ctx context.Context, chatID int64, key, value string) error {
	const q = `
insert into session_flags(chat_id, key, value)
values ($1,$2,$3)
on conflict (chat_id, key)
do update set value=excluded.value, updated_at=now()`
	_, err := r.DB.ExecContext(ctx, q, chatID, key, value)
	return err
}

// Remove удаляет флаг; отсутствие записи не ошибка.
func (r *SessionRepo) Remove(ctx context.Context, chatID int64, key string) error {
	_, err := r.DB.ExecContext(ctx, `delete from session_flags where chat_id=$1 and key=$2`, chatID, key)
	return err
}
