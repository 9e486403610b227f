package exports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo keeps history in the exports table.
type PGRepo struct {
	DB *sql.DB
}

const selectExport = `SELECT id, user_id, doc_type, format, file_name, reference_no,
       storage_key, mime_type, size_bytes, created_at
  FROM exports`

func (r *PGRepo) Insert(ctx context.Context, e Export) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO exports
    (id, user_id, doc_type, format, file_name, reference_no, storage_key, mime_type, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.UserID, e.DocType, e.Format, e.FileName, e.ReferenceNo,
		e.StorageKey, e.MimeType, e.SizeBytes, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert export %s: %w", e.ID, err)
	}
	return nil
}

func (r *PGRepo) Find(ctx context.Context, exportID string) (Export, error) {
	row := r.DB.QueryRowContext(ctx, selectExport+`
 WHERE id = $1 AND deleted_at IS NULL`, exportID)
	var e Export
	err := row.Scan(exportFields(&e)...)
	if errors.Is(err, sql.ErrNoRows) {
		return Export{}, ErrNotFound
	}
	return e, err
}

func (r *PGRepo) History(ctx context.Context, userID string, page Page) ([]Export, error) {
	page = page.clamp()
	rows, err := r.DB.QueryContext(ctx, selectExport+`
 WHERE user_id = $1 AND deleted_at IS NULL
 ORDER BY created_at DESC, id DESC
 LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	list := make([]Export, 0, page.Limit)
	for rows.Next() {
		var e Export
		if err := rows.Scan(exportFields(&e)...); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// exportFields matches the column order of selectExport.
func exportFields(e *Export) []any {
	return []any{&e.ID, &e.UserID, &e.DocType, &e.Format, &e.FileName, &e.ReferenceNo,
		&e.StorageKey, &e.MimeType, &e.SizeBytes, &e.CreatedAt}
}

var _ Repo = (*PGRepo)(nil)
