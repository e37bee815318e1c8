package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/blog-api/internal/model"
)

// CommentRepo stores comments.  Moderation transitions are conditional
// writes keyed on status='pending'; the affected-row count tells the caller
// whether the transition happened.
type CommentRepo struct{ DB *sqlx.DB }

func NewCommentRepo(db *sqlx.DB) *CommentRepo { return &CommentRepo{DB: db} }

const commentSelect = `SELECT c.id, c.post_id, c.user_id, u.username, c.body, c.status, c.created_at
	FROM comments c
	JOIN users u ON u.id = c.user_id`

// Insert stores a new pending comment and returns it.
func (r *CommentRepo) Insert(ctx context.Context, postID, userID uint64, body string) (model.Comment, error) {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (post_id, user_id, body, status, created_at) VALUES (?,?,?,?,?)",
		postID, userID, body, model.CommentPending, now)
	if err != nil {
		return model.Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, err
	}
	return r.Get(ctx, uint64(id))
}

func (r *CommentRepo) Get(ctx context.Context, id uint64) (model.Comment, error) {
	var c model.Comment
	err := r.DB.GetContext(ctx, &c, commentSelect+" WHERE c.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// ApproveIfPending moves a pending comment to approved.  It reports false
// when no pending comment with id exists.
func (r *CommentRepo) ApproveIfPending(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET status=? WHERE id=? AND status=?",
		model.CommentApproved, id, model.CommentPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteIfPending removes a pending comment.  It reports false when no
// pending comment with id exists.
func (r *CommentRepo) DeleteIfPending(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM comments WHERE id=? AND status=?", id, model.CommentPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a comment in any state.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListByStatus returns the comments of postID in status, oldest first.
func (r *CommentRepo) ListByStatus(ctx context.Context, postID uint64, status model.CommentStatus) ([]model.Comment, error) {
	out := []model.Comment{}
	err := r.DB.SelectContext(ctx, &out,
		commentSelect+" WHERE c.post_id = ? AND c.status = ? ORDER BY c.created_at ASC, c.id ASC",
		postID, status)
	return out, err
}

// Pending returns every pending comment, oldest first.
func (r *CommentRepo) Pending(ctx context.Context) ([]model.Comment, error) {
	out := []model.Comment{}
	err := r.DB.SelectContext(ctx, &out,
		commentSelect+" WHERE c.status = ? ORDER BY c.created_at ASC, c.id ASC",
		model.CommentPending)
	return out, err
}
