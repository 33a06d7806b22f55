package borrowrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/Mehedi-programming/floating-library/model"
)

// LockedBook is what Create/Accept need to know about a book while holding
// its row lock.
type LockedBook struct {
	ID         int64
	OwnerID    int64
	OwnerEmail string
	Title      string
}

type Repo interface {
	// LockBook takes the book's row lock for the duration of the tx; the
	// check-then-write sequences behind the availability invariants run
	// under it.
	LockBook(ctx context.Context, tx *sql.Tx, bookID int64) (*LockedBook, error)

	CountAcceptedByRequester(ctx context.Context, tx *sql.Tx, requesterID int64) (int64, error)
	HasAcceptedForBook(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	HasPending(ctx context.Context, tx *sql.Tx, requesterID, bookID int64) (bool, error)

	Insert(ctx context.Context, tx *sql.Tx, requesterID, ownerID, bookID int64) (*model.BorrowRequest, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error)
	SetStatus(ctx context.Context, tx *sql.Tx, requestID int64, status model.BorrowStatus) error
	MarkAccepted(ctx context.Context, tx *sql.Tx, requestID int64, acceptedAt, returnDate time.Time) error
	MarkReturned(ctx context.Context, tx *sql.Tx, requestID int64, isLate bool) error

	SetBorrowerFlag(ctx context.Context, tx *sql.Tx, userID int64, borrower bool) error
	SetLenderFlag(ctx context.Context, tx *sql.Tx, userID int64, lender bool) error

	ListByRequester(ctx context.Context, requesterID int64) ([]model.BorrowRequest, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.BorrowRequest, error)
	CountAccepted(ctx context.Context, requesterID int64) (int64, error)
	CountLent(ctx context.Context, ownerID int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) LockBook(ctx context.Context, tx *sql.Tx, bookID int64) (*LockedBook, error) {
	const q = `
		SELECT b.id, b.owner_id, u.email, b.title
		FROM books b
		JOIN users u ON u.id = b.owner_id
		WHERE b.id = $1
		FOR UPDATE OF b`
	lb := &LockedBook{}
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&lb.ID, &lb.OwnerID, &lb.OwnerEmail, &lb.Title)
	if err != nil {
		return nil, err
	}
	return lb, nil
}

func (r *repo) CountAcceptedByRequester(ctx context.Context, tx *sql.Tx, requesterID int64) (int64, error) {
	const q = `
		SELECT COUNT(*) FROM borrow_requests
		WHERE requester_id = $1 AND status = 'ACCEPTED'`
	var n int64
	err := tx.QueryRowContext(ctx, q, requesterID).Scan(&n)
	return n, err
}

func (r *repo) HasAcceptedForBook(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM borrow_requests
			WHERE book_id = $1 AND status = 'ACCEPTED')`
	var exists bool
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) HasPending(ctx context.Context, tx *sql.Tx, requesterID, bookID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM borrow_requests
			WHERE requester_id = $1 AND book_id = $2 AND status = 'PENDING')`
	var exists bool
	err := tx.QueryRowContext(ctx, q, requesterID, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, requesterID, ownerID, bookID int64) (*model.BorrowRequest, error) {
	const q = `
		INSERT INTO borrow_requests (requester_id, owner_id, book_id, status)
		VALUES ($1,$2,$3,'PENDING')
		RETURNING id, created_at`
	br := &model.BorrowRequest{
		RequesterID: requesterID,
		OwnerID:     ownerID,
		BookID:      bookID,
		Status:      model.BorrowPending,
	}
	if err := tx.QueryRowContext(ctx, q, requesterID, ownerID, bookID).Scan(&br.ID, &br.CreatedAt); err != nil {
		return nil, err
	}
	return br, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
	const q = `
		SELECT id, requester_id, owner_id, book_id, status,
		       created_at, accepted_at, return_date, is_late
		FROM borrow_requests
		WHERE id = $1
		FOR UPDATE`
	br := &model.BorrowRequest{}
	err := tx.QueryRowContext(ctx, q, requestID).Scan(
		&br.ID, &br.RequesterID, &br.OwnerID, &br.BookID, &br.Status,
		&br.CreatedAt, &br.AcceptedAt, &br.ReturnDate, &br.IsLate)
	if err != nil {
		return nil, err
	}
	return br, nil
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, requestID int64, status model.BorrowStatus) error {
	const q = `UPDATE borrow_requests SET status = $2 WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, requestID, status)
	return err
}

func (r *repo) MarkAccepted(ctx context.Context, tx *sql.Tx, requestID int64, acceptedAt, returnDate time.Time) error {
	const q = `
		UPDATE borrow_requests
		SET status = 'ACCEPTED', accepted_at = $2, return_date = $3
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, requestID, acceptedAt, returnDate)
	return err
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, requestID int64, isLate bool) error {
	const q = `
		UPDATE borrow_requests
		SET status = 'RETURNED', is_late = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, requestID, isLate)
	return err
}

func (r *repo) SetBorrowerFlag(ctx context.Context, tx *sql.Tx, userID int64, borrower bool) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET is_borrower = $2 WHERE id = $1`, userID, borrower)
	return err
}

func (r *repo) SetLenderFlag(ctx context.Context, tx *sql.Tx, userID int64, lender bool) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET is_lender = $2 WHERE id = $1`, userID, lender)
	return err
}

const listCols = `
	br.id, br.requester_id, br.owner_id, br.book_id, b.title, br.status,
	br.created_at, br.accepted_at, br.return_date, br.is_late`

func (r *repo) list(ctx context.Context, q string, id int64) ([]model.BorrowRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BorrowRequest
	for rows.Next() {
		var br model.BorrowRequest
		if err := rows.Scan(
			&br.ID, &br.RequesterID, &br.OwnerID, &br.BookID, &br.BookTitle, &br.Status,
			&br.CreatedAt, &br.AcceptedAt, &br.ReturnDate, &br.IsLate,
		); err != nil {
			return nil, err
		}
		out = append(out, br)
	}
	return out, rows.Err()
}

func (r *repo) ListByRequester(ctx context.Context, requesterID int64) ([]model.BorrowRequest, error) {
	const q = `
		SELECT` + listCols + `
		FROM borrow_requests br
		JOIN books b ON b.id = br.book_id
		WHERE br.requester_id = $1
		ORDER BY br.created_at DESC`
	return r.list(ctx, q, requesterID)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]model.BorrowRequest, error) {
	const q = `
		SELECT` + listCols + `
		FROM borrow_requests br
		JOIN books b ON b.id = br.book_id
		WHERE br.owner_id = $1
		ORDER BY br.created_at DESC`
	return r.list(ctx, q, ownerID)
}

func (r *repo) CountAccepted(ctx context.Context, requesterID int64) (int64, error) {
	const q = `
		SELECT COUNT(*) FROM borrow_requests
		WHERE requester_id = $1 AND status = 'ACCEPTED'`
	var n int64
	err := r.db.QueryRowContext(ctx, q, requesterID).Scan(&n)
	return n, err
}

func (r *repo) CountLent(ctx context.Context, ownerID int64) (int64, error) {
	const q = `
		SELECT COUNT(*) FROM borrow_requests
		WHERE owner_id = $1 AND status = 'ACCEPTED'`
	var n int64
	err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&n)
	return n, err
}
