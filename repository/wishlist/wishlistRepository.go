package wishlistrepo

import (
	"context"
	"database/sql"

	"github.com/Mehedi-programming/floating-library/model"
)

type Repo interface {
	// Upsert is a get-or-create: adding twice returns the existing entry.
	Upsert(ctx context.Context, userID, bookID int64) (*model.WishListEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]model.WishListEntry, error)
	Delete(ctx context.Context, userID, bookID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Upsert(ctx context.Context, userID, bookID int64) (*model.WishListEntry, error) {
	const q = `
		INSERT INTO wishlists (user_id, book_id)
		VALUES ($1,$2)
		ON CONFLICT (user_id, book_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, added_at`
	e := &model.WishListEntry{UserID: userID, BookID: bookID}
	if err := r.db.QueryRowContext(ctx, q, userID, bookID).Scan(&e.ID, &e.AddedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.WishListEntry, error) {
	const q = `
		SELECT w.id, w.user_id, w.book_id, b.title, w.added_at
		FROM wishlists w
		JOIN books b ON b.id = w.book_id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WishListEntry
	for rows.Next() {
		var e model.WishListEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.BookID, &e.BookTitle, &e.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repo) Delete(ctx context.Context, userID, bookID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlists WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
