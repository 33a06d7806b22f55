package bookrepo

import (
	"context"
	"database/sql"

	"github.com/Mehedi-programming/floating-library/model"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	List(ctx context.Context) ([]model.Book, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Book, error)
	Search(ctx context.Context, query string) ([]model.Book, error)
	TopRated(ctx context.Context) ([]model.Book, error)
	RecentlyUpdated(ctx context.Context) ([]model.Book, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]model.Book, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)

	Categories(ctx context.Context) ([]model.Category, error)
	CategoryByID(ctx context.Context, id int64) (*model.Category, error)

	// Review toggle pieces, run inside one tx so the rating counter cannot
	// drift from the review rows.
	LockBookRating(ctx context.Context, tx *sql.Tx, bookID int64) (int, error)
	FindReview(ctx context.Context, tx *sql.Tx, bookID, reviewerID int64) (int64, error)
	InsertReview(ctx context.Context, tx *sql.Tx, bookID, reviewerID int64) error
	DeleteReview(ctx context.Context, tx *sql.Tx, reviewID int64) error
	SetRating(ctx context.Context, tx *sql.Tx, bookID int64, rating int) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// is_available means no ACCEPTED borrow request references the book.
const bookCols = `
	b.id, b.title, b.author, b.category_id, c.name, b.owner_id, b.language,
	b.book_image, b.short_description, b.published_date, b.slug, b.rating,
	NOT EXISTS (
		SELECT 1 FROM borrow_requests br
		WHERE br.book_id = b.id AND br.status = 'ACCEPTED'
	) AS is_available,
	b.created_at, b.updated_at`

const bookFrom = `
	FROM books b
	LEFT JOIN categories c ON c.id = b.category_id`

func scanBook(row interface{ Scan(...any) error }) (*model.Book, error) {
	b := &model.Book{}
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.CategoryID, &b.CategoryName,
		&b.OwnerID, &b.Language, &b.ImageURL, &b.Description, &b.PublishedDate,
		&b.Slug, &b.Rating, &b.IsAvailable, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) queryBooks(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, category_id, owner_id, language,
		                   book_image, short_description, published_date, slug)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.CategoryID, b.OwnerID, b.Language,
		b.ImageURL, b.Description, b.PublishedDate, b.Slug,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title = $2, author = $3, category_id = $4, language = $5,
		    book_image = $6, short_description = $7, published_date = $8,
		    updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.CategoryID, b.Language,
		b.ImageURL, b.Description, b.PublishedDate)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return scanBook(r.db.QueryRowContext(ctx,
		`SELECT`+bookCols+bookFrom+` WHERE b.id = $1`, id))
}

func (r *repo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	return r.queryBooks(ctx, `SELECT`+bookCols+bookFrom+` ORDER BY b.created_at DESC`)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Book, error) {
	return r.queryBooks(ctx,
		`SELECT`+bookCols+bookFrom+` WHERE b.owner_id = $1 ORDER BY b.created_at DESC`,
		ownerID)
}

func (r *repo) Search(ctx context.Context, query string) ([]model.Book, error) {
	const q = `SELECT` + bookCols + bookFrom + `
		WHERE b.title ILIKE '%' || $1 || '%'
		   OR b.author ILIKE '%' || $1 || '%'
		   OR c.name ILIKE '%' || $1 || '%'
		ORDER BY b.created_at DESC`
	return r.queryBooks(ctx, q, query)
}

func (r *repo) TopRated(ctx context.Context) ([]model.Book, error) {
	return r.queryBooks(ctx,
		`SELECT`+bookCols+bookFrom+` WHERE b.rating > 4 ORDER BY b.rating DESC`)
}

func (r *repo) RecentlyUpdated(ctx context.Context) ([]model.Book, error) {
	return r.queryBooks(ctx, `SELECT`+bookCols+bookFrom+` ORDER BY b.updated_at DESC`)
}

func (r *repo) ListByCategory(ctx context.Context, categoryID int64) ([]model.Book, error) {
	return r.queryBooks(ctx,
		`SELECT`+bookCols+bookFrom+` WHERE b.category_id = $1 ORDER BY b.created_at DESC`,
		categoryID)
}

func (r *repo) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE owner_id = $1`, ownerID).Scan(&n)
	return n, err
}

func (r *repo) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) CategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repo) LockBookRating(ctx context.Context, tx *sql.Tx, bookID int64) (int, error) {
	const q = `SELECT rating FROM books WHERE id = $1 FOR UPDATE`
	var rating int
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&rating)
	return rating, err
}

func (r *repo) FindReview(ctx context.Context, tx *sql.Tx, bookID, reviewerID int64) (int64, error) {
	const q = `SELECT id FROM book_reviews WHERE book_id = $1 AND reviewer_id = $2`
	var id int64
	err := tx.QueryRowContext(ctx, q, bookID, reviewerID).Scan(&id)
	return id, err
}

func (r *repo) InsertReview(ctx context.Context, tx *sql.Tx, bookID, reviewerID int64) error {
	const q = `INSERT INTO book_reviews (book_id, reviewer_id) VALUES ($1,$2)`
	_, err := tx.ExecContext(ctx, q, bookID, reviewerID)
	return err
}

func (r *repo) DeleteReview(ctx context.Context, tx *sql.Tx, reviewID int64) error {
	const q = `DELETE FROM book_reviews WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, reviewID)
	return err
}

func (r *repo) SetRating(ctx context.Context, tx *sql.Tx, bookID int64, rating int) error {
	const q = `UPDATE books SET rating = $2 WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookID, rating)
	return err
}
