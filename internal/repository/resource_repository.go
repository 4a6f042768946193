package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

// upsertChunk bounds the number of rows per INSERT statement so a large
// collection stays well under max_allowed_packet.
const upsertChunk = 100

// ResourceRepo reads and writes the six mirrored resource tables.  Table
// and column names come from the fixed model.Kind registry, never from
// request input, so they are safe to splice into statements.
type ResourceRepo struct{ DB *sql.DB }

func NewResourceRepo(db *sql.DB) *ResourceRepo { return &ResourceRepo{DB: db} }

// Upsert writes rows keyed on external_id: matching rows are replaced
// column by column, others are inserted.  Rows missing from the batch are
// left alone.  The whole batch runs in one transaction so readers never
// observe half a sync.  It returns the number of rows submitted.
func (r *ResourceRepo) Upsert(ctx context.Context, kind model.Kind, rows []model.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for start := 0; start < len(rows); start += upsertChunk {
		end := min(start+upsertChunk, len(rows))
		q, args := upsertStatement(kind, rows[start:end])
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", kind, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(rows), nil
}

// upsertStatement builds one multi-row INSERT ... ON DUPLICATE KEY UPDATE.
func upsertStatement(kind model.Kind, rows []model.Row) (string, []any) {
	cols := kind.Columns()
	quoted := make([]string, len(cols))
	updates := make([]string, 0, len(cols)-1)
	for i, c := range cols {
		quoted[i] = "`" + c + "`"
		if c != "external_id" {
			updates = append(updates, fmt.Sprintf("`%s`=VALUES(`%s`)", c, c))
		}
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO `%s` (%s) VALUES ", kind.Table(), strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(cols))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(tuple)
		args = append(args, row.Values()...)
	}
	b.WriteString(" ON DUPLICATE KEY UPDATE ")
	b.WriteString(strings.Join(updates, ", "))
	return b.String(), args
}

// Count returns the exact number of rows of kind.
func (r *ResourceRepo) Count(ctx context.Context, kind model.Kind) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM `"+kind.Table()+"`").Scan(&n)
	return n, err
}

// List returns up to limit rows starting at offset, ordered by local id.
func (r *ResourceRepo) List(ctx context.Context, kind model.Kind, limit, offset int) ([]model.Row, error) {
	q := fmt.Sprintf("SELECT id, %s FROM `%s` ORDER BY id ASC LIMIT ? OFFSET ?",
		strings.Join(kind.Columns(), ", "), kind.Table())
	rows, err := r.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Row, 0, limit)
	for rows.Next() {
		row := kind.NewRow()
		if err := rows.Scan(row.Targets()...); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteAll empties the table of kind and reports how many rows went.
func (r *ResourceRepo) DeleteAll(ctx context.Context, kind model.Kind) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM `"+kind.Table()+"`")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
