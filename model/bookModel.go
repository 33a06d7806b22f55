// model/book.go
package model

import "time"

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Book struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	CategoryID    *int64     `json:"category_id,omitempty"`
	CategoryName  *string    `json:"category,omitempty"`
	OwnerID       int64      `json:"owner_id"`
	Language      string     `json:"language"`
	ImageURL      *string    `json:"book_image,omitempty"`
	Description   *string    `json:"short_description,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Slug          string     `json:"slug"`
	Rating        int        `json:"rating"`
	IsAvailable   bool       `json:"is_available"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BookReview is a per-user "liked" marker, not a star rating. The book's
// rating column counts these rows.
type BookReview struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	ReviewerID int64     `json:"reviewer_id"`
	CreatedAt  time.Time `json:"created_at"`
}
