package model

import "time"

// Like is the presence of a (post, user) pair.  The pair is the primary
// key, so a user can like a post at most once.
type Like struct {
    PostID    uint64    `db:"post_id"`
    UserID    uint64    `db:"user_id"`
    CreatedAt time.Time `db:"created_at"`
}
