package store

import (
	"context"
	"database/sql"
	"time"
)

// ResultRow — показанный пользователю результат. Значения формы не сохраняются.
type ResultRow struct {
	ID        int64
	CreatedAt time.Time
	ChatID    int64
	Kind      string
	Type      string // "outcome" | "error"
	Severity  string
	Label     string
	Detail    string
}

type ResultRepo struct{ DB *sql.DB }

func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{DB: db} }

func (r *ResultRepo) Insert(ctx context.Context, row ResultRow) error {
	const q = `
insert into screening_results(chat_id, kind, type, severity, label, detail)
values ($1,$2,$3,$4,$5,$6)`
	_, err := r.DB.ExecContext(ctx, q, row.ChatID, row.Kind, row.Type, row.Severity, row.Label, row.Detail)
	return err
}

// Recent — последние limit результатов чата, новые первыми.
func (r *ResultRepo) Recent(ctx context.Context, chatID int64, limit int) ([]ResultRow, error) {
	if limit <= 0 {
		limit = 5
	}
	const q = `
select id, created_at, chat_id, kind, type,
       coalesce(severity,'') as severity,
       label,
       coalesce(detail,'') as detail
from screening_results
where chat_id = $1
order by created_at desc, id desc
limit $2`
	rows, err := r.DB.QueryContext(ctx, q, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var rr ResultRow
		if err := rows.Scan(&rr.ID, &rr.CreatedAt, &rr.ChatID, &rr.Kind, &rr.Type, &rr.Severity, &rr.Label, &rr.Detail); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
