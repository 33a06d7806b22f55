// model/comment.go
package model

import "time"

type VoteChoice string

const (
	VoteUp   VoteChoice = "upvote"
	VoteDown VoteChoice = "downvote"
)

type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookID    int64     `json:"book_id"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentVote is a user's current direction on a comment, unique per
// (user, comment). The comment's counters are adjusted whenever it is
// created, flipped or removed.
type CommentVote struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	CommentID int64      `json:"comment_id"`
	Vote      VoteChoice `json:"vote"`
	CreatedAt time.Time  `json:"created_at"`
}
