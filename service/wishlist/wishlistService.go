package wishlistsvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Mehedi-programming/floating-library/model"
	bookrepo "github.com/Mehedi-programming/floating-library/repository/book"
	wishlistrepo "github.com/Mehedi-programming/floating-library/repository/wishlist"
)

type ErrCode string

const (
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotFound     ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// Add is idempotent; re-adding returns the existing entry.
	Add(ctx context.Context, userID, bookID int64) (*model.WishListEntry, error)
	List(ctx context.Context, userID int64) ([]model.WishListEntry, error)
	Remove(ctx context.Context, userID, bookID int64) error
}

type service struct {
	r  wishlistrepo.Repo
	br bookrepo.Repo
}

func New(r wishlistrepo.Repo, br bookrepo.Repo) Service { return &service{r: r, br: br} }

func (s *service) Add(ctx context.Context, userID, bookID int64) (*model.WishListEntry, error) {
	b, err := s.br.ByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, codedError{ErrBookNotFound}
		}
		return nil, err
	}
	e, err := s.r.Upsert(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	e.BookTitle = b.Title
	return e, nil
}

func (s *service) List(ctx context.Context, userID int64) ([]model.WishListEntry, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID, bookID int64) error {
	if err := s.r.Delete(ctx, userID, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return codedError{ErrNotFound}
		}
		return err
	}
	return nil
}
