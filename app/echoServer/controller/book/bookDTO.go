package book

import "time"

type CreateBookReq struct {
	Title         string     `json:"title" validate:"required"`
	Author        string     `json:"author" validate:"required"`
	CategoryID    *int64     `json:"category_id"`
	Language      string     `json:"language"`
	ImageURL      *string    `json:"book_image"`
	Description   *string    `json:"short_description"`
	PublishedDate *time.Time `json:"published_date"`
}

type UpdateBookReq struct {
	Title         *string    `json:"title"`
	Author        *string    `json:"author"`
	CategoryID    *int64     `json:"category_id"`
	Language      *string    `json:"language"`
	ImageURL      *string    `json:"book_image"`
	Description   *string    `json:"short_description"`
	PublishedDate *time.Time `json:"published_date"`
}
