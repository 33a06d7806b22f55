package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/Mehedi-programming/floating-library/model"
	bookrepo "github.com/Mehedi-programming/floating-library/repository/book"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrCategoryNotFound ErrCode = "CATEGORY_NOT_FOUND"
	ErrNotOwner         ErrCode = "NOT_OWNER"
	ErrBadInput         ErrCode = "BAD_INPUT"
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

type CreateInput struct {
	Title         string
	Author        string
	CategoryID    *int64
	Language      string
	ImageURL      *string
	Description   *string
	PublishedDate *time.Time
}

// UpdateInput carries only the fields being changed.
type UpdateInput struct {
	Title         *string
	Author        *string
	CategoryID    *int64
	Language      *string
	ImageURL      *string
	Description   *string
	PublishedDate *time.Time
}

type ReviewResult struct {
	Rating  int  `json:"rating"`
	Created bool `json:"-"`
}

type Service interface {
	Create(ctx context.Context, ownerID int64, in CreateInput) (*model.Book, error)
	Update(ctx context.Context, ownerID, bookID int64, in UpdateInput) (*model.Book, error)
	Delete(ctx context.Context, ownerID, bookID int64) error
	Detail(ctx context.Context, bookID int64) (*model.Book, error)

	List(ctx context.Context) ([]model.Book, error)
	MyBooks(ctx context.Context, ownerID int64) ([]model.Book, error)
	MyBookCount(ctx context.Context, ownerID int64) (int64, error)
	Search(ctx context.Context, query string) ([]model.Book, error)
	TopRated(ctx context.Context) ([]model.Book, error)
	RecentlyUpdated(ctx context.Context) ([]model.Book, error)
	Categories(ctx context.Context) ([]model.Category, error)
	ByCategory(ctx context.Context, categoryID int64) ([]model.Book, error)

	// ToggleReview flips the caller's "liked" marker and keeps the rating
	// counter in step, inside one tx.
	ToggleReview(ctx context.Context, reviewerID, bookID int64) (*ReviewResult, error)
}

type service struct {
	db *sql.DB
	r  bookrepo.Repo
}

func New(db *sql.DB, r bookrepo.Repo) Service { return &service{db: db, r: r} }

func (s *service) Create(ctx context.Context, ownerID int64, in CreateInput) (*model.Book, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Author) == "" {
		return nil, makeErr(ErrBadInput)
	}
	if in.CategoryID != nil {
		if _, err := s.r.CategoryByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, makeErr(ErrCategoryNotFound)
			}
			return nil, err
		}
	}

	sl, err := s.uniqueSlug(ctx, title)
	if err != nil {
		return nil, err
	}

	b := &model.Book{
		Title:         title,
		Author:        strings.TrimSpace(in.Author),
		CategoryID:    in.CategoryID,
		OwnerID:       ownerID,
		Language:      in.Language,
		ImageURL:      in.ImageURL,
		Description:   in.Description,
		PublishedDate: in.PublishedDate,
		Slug:          sl,
		IsAvailable:   true,
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// uniqueSlug derives a slug from the title and resolves collisions with a
// numeric suffix.
func (s *service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	candidate := base
	for counter := 1; ; counter++ {
		exists, err := s.r.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (s *service) Update(ctx context.Context, ownerID, bookID int64, in UpdateInput) (*model.Book, error) {
	b, err := s.ownedBook(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Author != nil {
		b.Author = strings.TrimSpace(*in.Author)
	}
	if in.CategoryID != nil {
		if _, err := s.r.CategoryByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, makeErr(ErrCategoryNotFound)
			}
			return nil, err
		}
		b.CategoryID = in.CategoryID
	}
	if in.Language != nil {
		b.Language = *in.Language
	}
	if in.ImageURL != nil {
		b.ImageURL = in.ImageURL
	}
	if in.Description != nil {
		b.Description = in.Description
	}
	if in.PublishedDate != nil {
		b.PublishedDate = in.PublishedDate
	}

	if err := s.r.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.r.ByID(ctx, bookID)
}

func (s *service) Delete(ctx context.Context, ownerID, bookID int64) error {
	if _, err := s.ownedBook(ctx, ownerID, bookID); err != nil {
		return err
	}
	return s.r.Delete(ctx, bookID)
}

func (s *service) ownedBook(ctx context.Context, ownerID, bookID int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, makeErr(ErrNotOwner)
	}
	return b, nil
}

func (s *service) Detail(ctx context.Context, bookID int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) MyBooks(ctx context.Context, ownerID int64) ([]model.Book, error) {
	return s.r.ListByOwner(ctx, ownerID)
}

func (s *service) MyBookCount(ctx context.Context, ownerID int64) (int64, error) {
	return s.r.CountByOwner(ctx, ownerID)
}

func (s *service) Search(ctx context.Context, query string) ([]model.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, makeErr(ErrBadInput)
	}
	return s.r.Search(ctx, query)
}

func (s *service) TopRated(ctx context.Context) ([]model.Book, error) { return s.r.TopRated(ctx) }

func (s *service) RecentlyUpdated(ctx context.Context) ([]model.Book, error) {
	return s.r.RecentlyUpdated(ctx)
}

func (s *service) Categories(ctx context.Context) ([]model.Category, error) {
	return s.r.Categories(ctx)
}

func (s *service) ByCategory(ctx context.Context, categoryID int64) ([]model.Book, error) {
	if _, err := s.r.CategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrCategoryNotFound)
		}
		return nil, err
	}
	return s.r.ListByCategory(ctx, categoryID)
}

func (s *service) ToggleReview(ctx context.Context, reviewerID, bookID int64) (res *ReviewResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rating, err := s.r.LockBookRating(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	reviewID, err := s.r.FindReview(ctx, tx, bookID, reviewerID)
	switch {
	case err == nil:
		// toggle off
		if err = s.r.DeleteReview(ctx, tx, reviewID); err != nil {
			return nil, err
		}
		rating--
		res = &ReviewResult{Rating: rating, Created: false}
	case errors.Is(err, sql.ErrNoRows):
		if err = s.r.InsertReview(ctx, tx, bookID, reviewerID); err != nil {
			return nil, err
		}
		rating++
		res = &ReviewResult{Rating: rating, Created: true}
	default:
		return nil, err
	}

	if err = s.r.SetRating(ctx, tx, bookID, rating); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}
