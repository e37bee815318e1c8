package model

import "time"

// Post is a blog post written by an admin.  LikesCount and CommentsCount
// are computed by the list/read queries (approved comments only) and are
// not columns of the posts table.
type Post struct {
    ID            uint64    `db:"id" json:"id"`
    UserID        uint64    `db:"user_id" json:"user_id"`
    Author        string    `db:"author" json:"author"`
    Title         string    `db:"title" json:"title"`
    Body          string    `db:"body" json:"body"`
    LikesCount    int64     `db:"likes_count" json:"likes_count"`
    CommentsCount int64     `db:"comments_count" json:"comments_count"`
    CreatedAt     time.Time `db:"created_at" json:"created_at"`
    UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
