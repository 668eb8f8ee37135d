package pages

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mangapages/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q      string // substring match on id or title
	Limit  int
	Offset int
}

// Normalize clamps Limit to 1..200 (default 50) and Offset to >= 0.
func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Summary is a list row; the full document is fetched with Get.
type Summary struct {
	ID         string    `json:"id"`
	PageNumber int       `json:"page_number"`
	Title      string    `json:"title,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Get returns the stored document, or nil, nil when there is none.
func (r *Repo) Get(ctx context.Context, id string) (*models.Document, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT document FROM pages WHERE id = ?`, id)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan get: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode page %s: %w", id, err)
	}
	return &doc, nil
}

func (r *Repo) Put(ctx context.Context, doc *models.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	var title sql.NullString
	if doc.Title != nil {
		title = sql.NullString{String: *doc.Title, Valid: true}
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO pages (id, page_number, title, document, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			page_number = excluded.page_number,
			title = excluded.title,
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP
	`, doc.ID, doc.PageNumber, title, string(b))
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete page: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]Summary, error) {
	q = q.Normalize()
	sqlStr, args := buildListSQL(q, false)
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0, q.Limit)
	for rows.Next() {
		var (
			s     Summary
			title sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.PageNumber, &title, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		s.Title = title.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func buildListSQL(q ListQuery, count bool) (string, []any) {
	var sb strings.Builder
	var args []any

	if count {
		sb.WriteString(`SELECT COUNT(*) FROM pages`)
	} else {
		sb.WriteString(`SELECT id, page_number, title, updated_at FROM pages`)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		sb.WriteString(` WHERE id LIKE ? OR title LIKE ?`)
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if count {
		return sb.String(), args
	}

	q = q.Normalize()
	sb.WriteString(` ORDER BY page_number, id LIMIT ? OFFSET ?`)
	args = append(args, q.Limit, q.Offset)
	return sb.String(), args
}
