package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/blog-api/internal/model"
)

type PostRepo struct{ DB *sqlx.DB }

func NewPostRepo(db *sqlx.DB) *PostRepo { return &PostRepo{DB: db} }

// postSelect joins the author and computes the like and approved-comment
// counts.  Callers append WHERE/ORDER/LIMIT.
const postSelect = `SELECT
		p.id,
		p.user_id,
		u.username AS author,
		p.title,
		p.body,
		(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS likes_count,
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id AND c.status = 'approved') AS comments_count,
		p.created_at,
		p.updated_at
	FROM posts p
	JOIN users u ON u.id = p.user_id`

// Create inserts a post and returns it with its author.
func (r *PostRepo) Create(ctx context.Context, userID uint64, title, body string) (model.Post, error) {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO posts (user_id, title, body, created_at, updated_at) VALUES (?,?,?,?,?)",
		userID, title, body, now, now)
	if err != nil {
		return model.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update changes title and body.  Nil fields are left untouched.
func (r *PostRepo) Update(ctx context.Context, id uint64, title, body *string) (model.Post, error) {
	sets := []string{"updated_at=?"}
	args := []any{time.Now().UTC()}
	if title != nil {
		sets = append(sets, "title=?")
		args = append(args, *title)
	}
	if body != nil {
		sets = append(sets, "body=?")
		args = append(args, *body)
	}
	args = append(args, id)

	if _, err := r.DB.ExecContext(ctx, "UPDATE posts SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
		return model.Post{}, err
	}
	// MySQL reports 0 rows for an update that changes nothing, so existence
	// is decided by reading the row back.
	return r.GetByID(ctx, id)
}

// Delete removes a post.  Comments and likes go with it via ON DELETE CASCADE.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM posts WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	var p model.Post
	err := r.DB.GetContext(ctx, &p, postSelect+" WHERE p.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// Exists reports whether a post with id is present.
func (r *PostRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM posts WHERE id=?", id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// PostQuery defines the keyword filter and pagination for listing posts.
type PostQuery struct {
	Keyword  string
	Page     int
	PageSize int
}

// Normalize clamps paging to sane bounds: page >= 1, 1 <= page_size <= 100
// with a default of 10.
func (q *PostQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	q.Keyword = strings.TrimSpace(q.Keyword)
}

// List returns one page of posts, newest first, and the total number of
// matches.  A keyword matches title or body case-insensitively.
func (r *PostRepo) List(ctx context.Context, q PostQuery) ([]model.Post, int64, error) {
	q.Normalize()

	cond := "1=1"
	args := []any{}
	if q.Keyword != "" {
		cond = "(LOWER(p.title) LIKE ? OR LOWER(p.body) LIKE ?)"
		kw := "%" + strings.ToLower(q.Keyword) + "%"
		args = append(args, kw, kw)
	}

	var total int64
	if err := r.DB.GetContext(ctx, &total, "SELECT COUNT(*) FROM posts p WHERE "+cond, args...); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	argsData := append(append([]any{}, args...), limit, offset)

	out := make([]model.Post, 0, limit)
	err := r.DB.SelectContext(ctx, &out,
		postSelect+" WHERE "+cond+" ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?",
		argsData...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
