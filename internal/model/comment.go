package model

import "time"

// CommentStatus is the persisted moderation state of a comment.  Rejected
// comments are deleted, so there is no rejected value.
type CommentStatus string

const (
    CommentPending  CommentStatus = "pending"
    CommentApproved CommentStatus = "approved"
)

// Comment mirrors the comments table.  Username is filled by queries that
// join the author (moderation queue, public listing).
type Comment struct {
    ID        uint64        `db:"id" json:"id"`
    PostID    uint64        `db:"post_id" json:"post_id"`
    UserID    uint64        `db:"user_id" json:"user_id"`
    Username  string        `db:"username" json:"username,omitempty"`
    Body      string        `db:"body" json:"body"`
    Status    CommentStatus `db:"status" json:"status"`
    CreatedAt time.Time     `db:"created_at" json:"created_at"`
}
