package users

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo stores accounts in the users table.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, email, COALESCE(full_name, ''), COALESCE(picture_url, ''),
  COALESCE(job_title, ''), COALESCE(department, ''), created_at, updated_at`

func (r *PGRepo) RecordSignIn(ctx context.Context, id Identity) (User, error) {
	row := r.DB.QueryRowContext(ctx, `
INSERT INTO users (id, email, full_name, picture_url)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  picture_url = EXCLUDED.picture_url,
  updated_at = now()
RETURNING `+userColumns,
		id.ID, id.Email, id.Name, id.Picture)
	return scanUser(row)
}

func (r *PGRepo) Get(ctx context.Context, userID string) (User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

func (r *PGRepo) SetProfile(ctx context.Context, userID string, p Profile) (User, error) {
	row := r.DB.QueryRowContext(ctx, `
UPDATE users SET job_title = NULLIF($2, ''), department = NULLIF($3, ''), updated_at = now()
WHERE id = $1
RETURNING `+userColumns,
		userID, p.JobTitle, p.Department)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Picture, &u.JobTitle, &u.Department, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

var (
	_ Repo = (*PGRepo)(nil)
	_ Repo = (*MemoryRepo)(nil)
)
