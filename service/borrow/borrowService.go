package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mehedi-programming/floating-library/model"
	"github.com/Mehedi-programming/floating-library/notifier"
	borrowrepo "github.com/Mehedi-programming/floating-library/repository/borrow"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrRequestNotFound ErrCode = "REQUEST_NOT_FOUND"
	ErrSelfBorrow      ErrCode = "SELF_BORROW"
	ErrBorrowLimit     ErrCode = "BORROW_LIMIT"
	ErrUnavailable     ErrCode = "BOOK_UNAVAILABLE"
	ErrDuplicate       ErrCode = "DUPLICATE_REQUEST"
	ErrNotOwner        ErrCode = "NOT_OWNER"
	ErrNotRequester    ErrCode = "NOT_REQUESTER"
	ErrNotPending      ErrCode = "NOT_PENDING"
	ErrNotAccepted     ErrCode = "NOT_ACCEPTED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Counts struct {
	Borrowed int64 `json:"borrowed_books"`
	Lent     int64 `json:"lent_books"`
}

type Service interface {
	// Create files a PENDING request and mails the book's owner.
	Create(ctx context.Context, requesterID int64, requesterEmail string, bookID int64) (*model.BorrowRequest, error)
	// Cancel: requester only, PENDING only.
	Cancel(ctx context.Context, requesterID, requestID int64) (*model.BorrowRequest, error)
	// Accept: owner only, PENDING only, book must still be available.
	Accept(ctx context.Context, ownerID, requestID int64) (*model.BorrowRequest, error)
	// Reject: owner only, PENDING only.
	Reject(ctx context.Context, ownerID, requestID int64) (*model.BorrowRequest, error)
	// Return: requester only, ACCEPTED only; flags late returns and drops
	// the requester's borrower flag when this was their last active loan.
	Return(ctx context.Context, requesterID, requestID int64) (*model.BorrowRequest, error)

	BorrowHistory(ctx context.Context, requesterID int64) ([]model.BorrowRequest, error)
	LendHistory(ctx context.Context, ownerID int64) ([]model.BorrowRequest, error)
	MyCounts(ctx context.Context, userID int64) (*Counts, error)
}

type service struct {
	db   *sql.DB
	r    borrowrepo.Repo
	mail notifier.Notifier
	log  *slog.Logger
	now  func() time.Time
}

func New(db *sql.DB, r borrowrepo.Repo, mail notifier.Notifier, log *slog.Logger) Service {
	return &service{db: db, r: r, mail: mail, log: log, now: time.Now}
}

// Create runs its precondition checks under the book's row lock so two
// concurrent requests cannot both slip past the availability checks.
func (s *service) Create(ctx context.Context, requesterID int64, requesterEmail string, bookID int64) (br *model.BorrowRequest, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	book, err := s.r.LockBook(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if book.OwnerID == requesterID {
		return nil, makeErr(ErrSelfBorrow)
	}

	accepted, err := s.r.CountAcceptedByRequester(ctx, tx, requesterID)
	if err != nil {
		return nil, err
	}
	if accepted >= model.MaxActiveBorrows {
		return nil, makeErr(ErrBorrowLimit)
	}

	taken, err := s.r.HasAcceptedForBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, makeErr(ErrUnavailable)
	}

	pending, err := s.r.HasPending(ctx, tx, requesterID, bookID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, makeErr(ErrDuplicate)
	}

	br, err = s.r.Insert(ctx, tx, requesterID, book.OwnerID, bookID)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.notify(book.OwnerEmail, "New Borrow Request",
		fmt.Sprintf("You have a new borrow request for your book '%s' from %s.", book.Title, requesterEmail))
	br.BookTitle = book.Title
	return br, nil
}

func (s *service) Cancel(ctx context.Context, requesterID, requestID int64) (*model.BorrowRequest, error) {
	return s.transition(ctx, requestID, func(ctx context.Context, tx *sql.Tx, br *model.BorrowRequest) error {
		if br.RequesterID != requesterID {
			return makeErr(ErrNotRequester)
		}
		if br.Status != model.BorrowPending {
			return makeErr(ErrNotPending)
		}
		if err := s.r.SetStatus(ctx, tx, br.ID, model.BorrowCancelled); err != nil {
			return err
		}
		br.Status = model.BorrowCancelled
		return nil
	})
}

func (s *service) Accept(ctx context.Context, ownerID, requestID int64) (*model.BorrowRequest, error) {
	return s.transition(ctx, requestID, func(ctx context.Context, tx *sql.Tx, br *model.BorrowRequest) error {
		if br.OwnerID != ownerID {
			return makeErr(ErrNotOwner)
		}
		if br.Status != model.BorrowPending {
			return makeErr(ErrNotPending)
		}

		// Lock the book row before re-checking availability; a concurrent
		// accept for the same book serializes here.
		if _, err := s.r.LockBook(ctx, tx, br.BookID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrBookNotFound)
			}
			return err
		}
		taken, err := s.r.HasAcceptedForBook(ctx, tx, br.BookID)
		if err != nil {
			return err
		}
		if taken {
			return makeErr(ErrUnavailable)
		}

		acceptedAt := s.now()
		returnDate := acceptedAt.Add(model.BorrowDays * 24 * time.Hour)
		if err := s.r.MarkAccepted(ctx, tx, br.ID, acceptedAt, returnDate); err != nil {
			return err
		}
		if err := s.r.SetBorrowerFlag(ctx, tx, br.RequesterID, true); err != nil {
			return err
		}
		if err := s.r.SetLenderFlag(ctx, tx, br.OwnerID, true); err != nil {
			return err
		}
		br.Status = model.BorrowAccepted
		br.AcceptedAt = &acceptedAt
		br.ReturnDate = &returnDate
		return nil
	})
}

func (s *service) Reject(ctx context.Context, ownerID, requestID int64) (*model.BorrowRequest, error) {
	return s.transition(ctx, requestID, func(ctx context.Context, tx *sql.Tx, br *model.BorrowRequest) error {
		if br.OwnerID != ownerID {
			return makeErr(ErrNotOwner)
		}
		if br.Status != model.BorrowPending {
			return makeErr(ErrNotPending)
		}
		if err := s.r.SetStatus(ctx, tx, br.ID, model.BorrowRejected); err != nil {
			return err
		}
		br.Status = model.BorrowRejected
		return nil
	})
}

func (s *service) Return(ctx context.Context, requesterID, requestID int64) (*model.BorrowRequest, error) {
	return s.transition(ctx, requestID, func(ctx context.Context, tx *sql.Tx, br *model.BorrowRequest) error {
		if br.RequesterID != requesterID {
			return makeErr(ErrNotRequester)
		}
		if br.Status != model.BorrowAccepted {
			return makeErr(ErrNotAccepted)
		}

		isLate := br.ReturnDate != nil && s.now().After(*br.ReturnDate)
		if err := s.r.MarkReturned(ctx, tx, br.ID, isLate); err != nil {
			return err
		}
		br.Status = model.BorrowReturned
		br.IsLate = isLate

		// is_borrower holds exactly while the user has an active loan.
		remaining, err := s.r.CountAcceptedByRequester(ctx, tx, requesterID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := s.r.SetBorrowerFlag(ctx, tx, requesterID, false); err != nil {
				return err
			}
		}
		return nil
	})
}

// transition loads the request under its row lock, applies fn and commits.
func (s *service) transition(ctx context.Context, requestID int64,
	fn func(context.Context, *sql.Tx, *model.BorrowRequest) error) (br *model.BorrowRequest, err error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	br, err = s.r.GetForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRequestNotFound)
		}
		return nil, err
	}
	if err = fn(ctx, tx, br); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return br, nil
}

func (s *service) BorrowHistory(ctx context.Context, requesterID int64) ([]model.BorrowRequest, error) {
	return s.r.ListByRequester(ctx, requesterID)
}

func (s *service) LendHistory(ctx context.Context, ownerID int64) ([]model.BorrowRequest, error) {
	return s.r.ListByOwner(ctx, ownerID)
}

func (s *service) MyCounts(ctx context.Context, userID int64) (*Counts, error) {
	borrowed, err := s.r.CountAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	lent, err := s.r.CountLent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Counts{Borrowed: borrowed, Lent: lent}, nil
}

func (s *service) notify(to, subject, body string) {
	go func() {
		if err := s.mail.Send(to, subject, body); err != nil {
			s.log.Error("mail send failed", "to", to, "subject", subject, "err", err)
		}
	}()
}
