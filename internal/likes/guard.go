// Package likes makes liking a post idempotent.  The guard always tries the
// insert first and lets the store's unique key decide; a conflict means the
// like already exists and is reported as success.
package likes

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/blog-api/internal/repository"
)

var ErrPostNotFound = errors.New("post not found")

// Store persists like pairs.  Insert must return repository.ErrConflict
// when the pair already exists.
type Store interface {
	PostExists(ctx context.Context, postID uint64) (bool, error)
	Insert(ctx context.Context, postID, userID uint64) error
	Delete(ctx context.Context, postID, userID uint64) (bool, error)
	Count(ctx context.Context, postID uint64) (int64, error)
}

// Result reports what a like or unlike did.
type Result struct {
	AlreadyLiked bool  // Like only: the pair existed before the call
	Removed      bool  // Unlike only: a pair was deleted
	LikesCount   int64 // likes on the post after the call
}

type Guard struct{ store Store }

func NewGuard(store Store) *Guard { return &Guard{store: store} }

// Like records that userID likes postID.  Repeating the call is harmless:
// it returns AlreadyLiked and changes nothing.
func (g *Guard) Like(ctx context.Context, userID, postID uint64) (Result, error) {
	if err := g.requirePost(ctx, postID); err != nil {
		return Result{}, err
	}
	var res Result
	err := g.store.Insert(ctx, postID, userID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrConflict):
		res.AlreadyLiked = true
	default:
		return Result{}, fmt.Errorf("insert like: %w", err)
	}
	return g.withCount(ctx, postID, res)
}

// Unlike removes the like of userID on postID if there is one.  Unliking a
// post that was never liked is not an error.
func (g *Guard) Unlike(ctx context.Context, userID, postID uint64) (Result, error) {
	if err := g.requirePost(ctx, postID); err != nil {
		return Result{}, err
	}
	removed, err := g.store.Delete(ctx, postID, userID)
	if err != nil {
		return Result{}, fmt.Errorf("delete like: %w", err)
	}
	return g.withCount(ctx, postID, Result{Removed: removed})
}

func (g *Guard) withCount(ctx context.Context, postID uint64, res Result) (Result, error) {
	n, err := g.store.Count(ctx, postID)
	if err != nil {
		return Result{}, fmt.Errorf("count likes: %w", err)
	}
	res.LikesCount = n
	return res, nil
}

func (g *Guard) requirePost(ctx context.Context, postID uint64) error {
	ok, err := g.store.PostExists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}
