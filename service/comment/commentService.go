package commentsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Mehedi-programming/floating-library/model"
	bookrepo "github.com/Mehedi-programming/floating-library/repository/book"
	commentrepo "github.com/Mehedi-programming/floating-library/repository/comment"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotAuthor    ErrCode = "NOT_AUTHOR"
	ErrBadInput     ErrCode = "BAD_INPUT"
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

type VoteResult struct {
	Upvotes   int  `json:"upvotes"`
	Downvotes int  `json:"downvotes"`
	Removed   bool `json:"-"`
}

type Service interface {
	Add(ctx context.Context, userID, bookID int64, parentID *int64, content string) (*model.Comment, error)
	Edit(ctx context.Context, userID, commentID int64, content string) (*model.Comment, error)
	Delete(ctx context.Context, userID, commentID int64) error
	ListByBook(ctx context.Context, bookID int64) ([]model.Comment, error)

	// Vote toggles: same direction removes the vote, the opposite flips it,
	// first-time voting records it. Counters move with the vote rows.
	Vote(ctx context.Context, userID, commentID int64, choice model.VoteChoice) (*VoteResult, error)
}

type service struct {
	db *sql.DB
	r  commentrepo.Repo
	br bookrepo.Repo
}

func New(db *sql.DB, r commentrepo.Repo, br bookrepo.Repo) Service {
	return &service{db: db, r: r, br: br}
}

func (s *service) Add(ctx context.Context, userID, bookID int64, parentID *int64, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, makeErr(ErrBadInput)
	}
	if _, err := s.br.ByID(ctx, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if parentID != nil {
		parent, err := s.r.ByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, makeErr(ErrNotFound)
			}
			return nil, err
		}
		if parent.BookID != bookID {
			return nil, makeErr(ErrBadInput)
		}
	}

	c := &model.Comment{UserID: userID, BookID: bookID, ParentID: parentID, Content: content}
	if err := s.r.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Edit(ctx context.Context, userID, commentID int64, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, makeErr(ErrBadInput)
	}
	c, err := s.authored(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.r.UpdateContent(ctx, commentID, content); err != nil {
		return nil, err
	}
	c.Content = content
	return c, nil
}

func (s *service) Delete(ctx context.Context, userID, commentID int64) error {
	if _, err := s.authored(ctx, userID, commentID); err != nil {
		return err
	}
	return s.r.Delete(ctx, commentID)
}

func (s *service) authored(ctx context.Context, userID, commentID int64) (*model.Comment, error) {
	c, err := s.r.ByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if c.UserID != userID {
		return nil, makeErr(ErrNotAuthor)
	}
	return c, nil
}

func (s *service) ListByBook(ctx context.Context, bookID int64) ([]model.Comment, error) {
	if _, err := s.br.ByID(ctx, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	return s.r.ListByBook(ctx, bookID)
}

func (s *service) Vote(ctx context.Context, userID, commentID int64, choice model.VoteChoice) (res *VoteResult, err error) {
	if choice != model.VoteUp && choice != model.VoteDown {
		return nil, makeErr(ErrBadInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	c, err := s.r.LockComment(ctx, tx, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	up, down := c.Upvotes, c.Downvotes
	existing, err := s.r.FindVote(ctx, tx, userID, commentID)
	switch {
	case err == nil && existing.Vote == choice:
		// re-submitting the same direction clears the vote
		if err = s.r.DeleteVote(ctx, tx, existing.ID); err != nil {
			return nil, err
		}
		if choice == model.VoteUp {
			up--
		} else {
			down--
		}
		res = &VoteResult{Removed: true}
	case err == nil:
		// flip
		if err = s.r.UpdateVote(ctx, tx, existing.ID, choice); err != nil {
			return nil, err
		}
		if choice == model.VoteUp {
			up++
			down--
		} else {
			down++
			up--
		}
		res = &VoteResult{}
	case errors.Is(err, sql.ErrNoRows):
		if err = s.r.InsertVote(ctx, tx, userID, commentID, choice); err != nil {
			return nil, err
		}
		if choice == model.VoteUp {
			up++
		} else {
			down++
		}
		res = &VoteResult{}
	default:
		return nil, err
	}

	if err = s.r.SetCounters(ctx, tx, commentID, up, down); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	res.Upvotes, res.Downvotes = up, down
	return res, nil
}
