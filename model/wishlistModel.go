// model/wishlist.go
package model

import "time"

type WishListEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookID    int64     `json:"book_id"`
	BookTitle string    `json:"book_title,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}
