// model/borrow.go
package model

import "time"

type BorrowStatus string

const (
	BorrowPending   BorrowStatus = "PENDING"
	BorrowAccepted  BorrowStatus = "ACCEPTED"
	BorrowRejected  BorrowStatus = "REJECTED"
	BorrowCancelled BorrowStatus = "CANCELLED"
	BorrowReturned  BorrowStatus = "RETURNED"
)

// BorrowDays is how long an accepted loan lasts before it counts as late.
const BorrowDays = 14

// MaxActiveBorrows caps concurrently ACCEPTED requests per borrower.
const MaxActiveBorrows = 2

// BorrowRequest carries the book owner denormalized from the book at
// creation time so authorization checks skip a join.
type BorrowRequest struct {
	ID          int64        `json:"id"`
	RequesterID int64        `json:"requester_id"`
	OwnerID     int64        `json:"owner_id"`
	BookID      int64        `json:"book_id"`
	BookTitle   string       `json:"book_title,omitempty"`
	Status      BorrowStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	AcceptedAt  *time.Time   `json:"accepted_at,omitempty"`
	ReturnDate  *time.Time   `json:"return_date,omitempty"`
	IsLate      bool         `json:"is_late"`
}
