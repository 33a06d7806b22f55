package commentrepo

import (
	"context"
	"database/sql"

	"github.com/Mehedi-programming/floating-library/model"
)

type Repo interface {
	Insert(ctx context.Context, c *model.Comment) error
	ByID(ctx context.Context, id int64) (*model.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
	ListByBook(ctx context.Context, bookID int64) ([]model.Comment, error)

	// Vote pieces run inside one tx with the comment row locked so the
	// counters stay consistent with the vote rows.
	LockComment(ctx context.Context, tx *sql.Tx, id int64) (*model.Comment, error)
	FindVote(ctx context.Context, tx *sql.Tx, userID, commentID int64) (*model.CommentVote, error)
	InsertVote(ctx context.Context, tx *sql.Tx, userID, commentID int64, vote model.VoteChoice) error
	UpdateVote(ctx context.Context, tx *sql.Tx, voteID int64, vote model.VoteChoice) error
	DeleteVote(ctx context.Context, tx *sql.Tx, voteID int64) error
	SetCounters(ctx context.Context, tx *sql.Tx, commentID int64, upvotes, downvotes int) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const commentCols = `id, user_id, book_id, parent_id, content, upvotes, downvotes, created_at, updated_at`

func scanComment(row interface{ Scan(...any) error }) (*model.Comment, error) {
	c := &model.Comment{}
	err := row.Scan(&c.ID, &c.UserID, &c.BookID, &c.ParentID, &c.Content,
		&c.Upvotes, &c.Downvotes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repo) Insert(ctx context.Context, c *model.Comment) error {
	const q = `
		INSERT INTO comments (user_id, book_id, parent_id, content)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q, c.UserID, c.BookID, c.ParentID, c.Content).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Comment, error) {
	return scanComment(r.db.QueryRowContext(ctx,
		`SELECT `+commentCols+` FROM comments WHERE id = $1`, id))
}

func (r *repo) UpdateContent(ctx context.Context, id int64, content string) error {
	const q = `UPDATE comments SET content = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, content)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}

func (r *repo) ListByBook(ctx context.Context, bookID int64) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentCols+` FROM comments WHERE book_id = $1 ORDER BY created_at DESC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repo) LockComment(ctx context.Context, tx *sql.Tx, id int64) (*model.Comment, error) {
	return scanComment(tx.QueryRowContext(ctx,
		`SELECT `+commentCols+` FROM comments WHERE id = $1 FOR UPDATE`, id))
}

func (r *repo) FindVote(ctx context.Context, tx *sql.Tx, userID, commentID int64) (*model.CommentVote, error) {
	const q = `
		SELECT id, user_id, comment_id, vote, created_at
		FROM comment_votes
		WHERE user_id = $1 AND comment_id = $2`
	v := &model.CommentVote{}
	err := tx.QueryRowContext(ctx, q, userID, commentID).
		Scan(&v.ID, &v.UserID, &v.CommentID, &v.Vote, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *repo) InsertVote(ctx context.Context, tx *sql.Tx, userID, commentID int64, vote model.VoteChoice) error {
	const q = `INSERT INTO comment_votes (user_id, comment_id, vote) VALUES ($1,$2,$3)`
	_, err := tx.ExecContext(ctx, q, userID, commentID, vote)
	return err
}

func (r *repo) UpdateVote(ctx context.Context, tx *sql.Tx, voteID int64, vote model.VoteChoice) error {
	const q = `UPDATE comment_votes SET vote = $2, updated_at = NOW() WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, voteID, vote)
	return err
}

func (r *repo) DeleteVote(ctx context.Context, tx *sql.Tx, voteID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM comment_votes WHERE id = $1`, voteID)
	return err
}

func (r *repo) SetCounters(ctx context.Context, tx *sql.Tx, commentID int64, upvotes, downvotes int) error {
	const q = `UPDATE comments SET upvotes = $2, downvotes = $3 WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, commentID, upvotes, downvotes)
	return err
}
