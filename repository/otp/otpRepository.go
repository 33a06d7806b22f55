package otprepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/Mehedi-programming/floating-library/model"
)

type Repo interface {
	Insert(ctx context.Context, userID int64, otpHash string, expiredAt time.Time) error
	// LatestUnused returns the most recent unused code for the user, or
	// sql.ErrNoRows when none exists.
	LatestUnused(ctx context.Context, userID int64) (*model.Otp, error)
	MarkUsed(ctx context.Context, tx *sql.Tx, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, userID int64, otpHash string, expiredAt time.Time) error {
	const q = `
		INSERT INTO otps (user_id, otp_hash, expired_at)
		VALUES ($1,$2,$3)`
	_, err := r.db.ExecContext(ctx, q, userID, otpHash, expiredAt)
	return err
}

func (r *repo) LatestUnused(ctx context.Context, userID int64) (*model.Otp, error) {
	const q = `
		SELECT id, user_id, otp_hash, is_used, expired_at, created_at
		FROM otps
		WHERE user_id = $1 AND is_used = FALSE
		ORDER BY created_at DESC
		LIMIT 1`
	o := &model.Otp{}
	err := r.db.QueryRowContext(ctx, q, userID).
		Scan(&o.ID, &o.UserID, &o.OtpHash, &o.IsUsed, &o.ExpiredAt, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repo) MarkUsed(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `UPDATE otps SET is_used = TRUE WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
