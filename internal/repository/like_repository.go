package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// LikeRepo stores (post, user) like pairs.  Uniqueness is enforced by the
// primary key, not by this code.
type LikeRepo struct{ DB *sqlx.DB }

func NewLikeRepo(db *sqlx.DB) *LikeRepo { return &LikeRepo{DB: db} }

// Insert records a like.  A second like of the same pair returns ErrConflict.
func (r *LikeRepo) Insert(ctx context.Context, postID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO likes (post_id, user_id, created_at) VALUES (?,?,?)",
		postID, userID, time.Now().UTC())
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// Delete removes a like and reports whether one existed.
func (r *LikeRepo) Delete(ctx context.Context, postID, userID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM likes WHERE post_id=? AND user_id=?", postID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *LikeRepo) Count(ctx context.Context, postID uint64) (int64, error) {
	var n int64
	err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM likes WHERE post_id=?", postID)
	return n, err
}

func (r *LikeRepo) Exists(ctx context.Context, postID, userID uint64) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM likes WHERE post_id=? AND user_id=?", postID, userID)
	return n > 0, err
}

// PostExists lets the like guard check its target without a second repo.
func (r *LikeRepo) PostExists(ctx context.Context, postID uint64) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM posts WHERE id=?", postID)
	return n > 0, err
}
