package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"invoice-extractor/api/internal/invoice"
)

var ErrNotFound = sql.ErrNoRows

const schema = `
create table if not exists invoice_extractions (
  id          bigserial primary key,
  created_at  timestamptz not null default now(),
  image_hash  text not null,
  model       text not null,
  mime_type   text not null,
  raw_text    text not null,
  result_json jsonb not null,
  unique (image_hash, model)
)`

// ExtractionRepo caches successful extractions keyed by (image_hash, model).
type ExtractionRepo struct {
	DB     *sql.DB
	MaxAge time.Duration // 0 disables the age check
}

func NewExtractionRepo(db *sql.DB, maxAge time.Duration) *ExtractionRepo {
	return &ExtractionRepo{DB: db, MaxAge: maxAge}
}

// ExtractionRow is one cached extraction.
type ExtractionRow struct {
	ID        int64
	CreatedAt time.Time
	ImageHash string
	Model     string
	MIMEType  string
	Result    invoice.Result
}

// EnsureSchema creates the cache table if it is missing.
func (r *ExtractionRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// FindByHash returns the newest row for (imageHash, model).
// Rows older than MaxAge, or with unreadable JSON, count as not found.
func (r *ExtractionRepo) FindByHash(ctx context.Context, imageHash, model string) (*ExtractionRow, error) {
	const q = `
select id, created_at, image_hash, model, mime_type, raw_text, result_json
from invoice_extractions
where image_hash = $1 and model = $2
order by created_at desc
limit 1`
	var (
		row ExtractionRow
		raw string
		js  []byte
	)
	err := r.DB.QueryRowContext(ctx, q, imageHash, model).
		Scan(&row.ID, &row.CreatedAt, &row.ImageHash, &row.Model, &row.MIMEType, &raw, &js)
	if err != nil {
		return nil, err
	}
	if r.MaxAge > 0 && time.Since(row.CreatedAt) > r.MaxAge {
		return nil, ErrNotFound
	}
	v, err := invoice.ParseJSON(string(js))
	if err != nil {
		return nil, ErrNotFound
	}
	row.Result = invoice.Result{Raw: raw, Text: invoice.StripFence(raw), Value: v}
	return &row, nil
}

// Lookup is FindByHash reporting a miss as ok=false.
func (r *ExtractionRepo) Lookup(ctx context.Context, imageHash, model string) (invoice.Result, bool, error) {
	row, err := r.FindByHash(ctx, imageHash, model)
	if errors.Is(err, ErrNotFound) {
		return invoice.Result{}, false, nil
	}
	if err != nil {
		return invoice.Result{}, false, err
	}
	return row.Result, true, nil
}

// Save upserts a successful extraction.
func (r *ExtractionRepo) Save(ctx context.Context, imageHash, model, mimeType string, res invoice.Result) error {
	js, err := res.JSON()
	if err != nil {
		return err
	}
	const q = `
insert into invoice_extractions (image_hash, model, mime_type, raw_text, result_json)
values ($1,$2,$3,$4,$5)
on conflict (image_hash, model) do update
set mime_type = excluded.mime_type,
    raw_text = excluded.raw_text,
    result_json = excluded.result_json,
    created_at = now()`
	_, err = r.DB.ExecContext(ctx, q, imageHash, model, mimeType, res.Raw, string(js))
	return err
}

// PurgeOlderThan deletes stale cache rows.
func (r *ExtractionRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from invoice_extractions where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
