package store

import (
	"context"
	"database/sql"
)

const ddl = `
create table if not exists session_flags (
	chat_id    bigint      not null,
	key        text        not null,
	value      text        not null,
	updated_at timestamptz not null default now(),
	primary key (chat_id, key)
);

create table if not exists screening_results (
	id         bigserial   primary key,
	created_at timestamptz not null default now(),
	chat_id    bigint      not null,
	kind       text        not null,
	type       text        not null,
	severity   text,
	label      text        not null,
	detail     text
);

create index if not exists screening_results_chat_idx on screening_results (chat_id, created_at desc);
`

// EnsureSchema создаёт таблицы, если их нет. Идемпотентно.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, ddl)
	return err
}
