package userrepo

import (
	"context"
	"database/sql"

	"github.com/Mehedi-programming/floating-library/model"
)

type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalLenders   int64 `json:"total_lenders"`
	TotalBorrowers int64 `json:"total_borrowers"`
}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)

	UpdateProfile(ctx context.Context, id int64, name, location *string) error
	UpdatePassword(ctx context.Context, tx *sql.Tx, id int64, passwordHash string) error

	SetActive(ctx context.Context, id int64, active bool) error
	PromoteAdmin(ctx context.Context, id int64) error

	// List filters on is_active when active is non-nil.
	List(ctx context.Context, active *bool) ([]model.User, error)
	DashboardStats(ctx context.Context) (*Stats, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const userCols = `id, name, email, location, password_hash, role,
       is_active, is_staff, is_superuser, is_lender, is_borrower, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Location, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.IsLender, &u.IsBorrower, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, location, password_hash, role)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		u.Name, u.Email, u.Location, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE lower(email) = lower($1)`, email))
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE id = $1`, id))
}

func (r *repo) UpdateProfile(ctx context.Context, id int64, name, location *string) error {
	const q = `
		UPDATE users
		SET name     = COALESCE($2, name),
		    location = COALESCE($3, location)
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, name, location)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) UpdatePassword(ctx context.Context, tx *sql.Tx, id int64, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2 WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) PromoteAdmin(ctx context.Context, id int64) error {
	const q = `
		UPDATE users
		SET role = 'ADMIN', is_staff = TRUE, is_active = TRUE
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) List(ctx context.Context, active *bool) ([]model.User, error) {
	q := `SELECT ` + userCols + ` FROM users`
	args := []any{}
	if active != nil {
		q += ` WHERE is_active = $1`
		args = append(args, *active)
	}
	q += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *repo) DashboardStats(ctx context.Context) (*Stats, error) {
	const q = `
		SELECT
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE is_active AND is_lender),
			COUNT(*) FILTER (WHERE is_active AND is_borrower)
		FROM users`
	s := &Stats{}
	if err := r.db.QueryRowContext(ctx, q).Scan(&s.TotalUsers, &s.TotalLenders, &s.TotalBorrowers); err != nil {
		return nil, err
	}
	return s, nil
}
