package moderation

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
)

// MaxBodyLength is the longest accepted comment, in characters.
const MaxBodyLength = 500

// Store is the persistence the service needs.  The transition methods are
// conditional: they only touch a row that is still pending and report
// whether they did.
type Store interface {
	Insert(ctx context.Context, postID, userID uint64, body string) (model.Comment, error)
	Get(ctx context.Context, id uint64) (model.Comment, error)
	ApproveIfPending(ctx context.Context, id uint64) (bool, error)
	DeleteIfPending(ctx context.Context, id uint64) (bool, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	ListByStatus(ctx context.Context, postID uint64, status model.CommentStatus) ([]model.Comment, error)
	Pending(ctx context.Context) ([]model.Comment, error)
}

// Posts answers whether a post exists.
type Posts interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

type Service struct {
	store Store
	posts Posts
}

func NewService(store Store, posts Posts) *Service {
	return &Service{store: store, posts: posts}
}

// NormalizeBody trims body and checks its length.
func NormalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if n := utf8.RuneCountInString(body); n == 0 || n > MaxBodyLength {
		return "", ErrInvalidBody
	}
	return body, nil
}

// Create stores a new pending comment by authorID on postID.
func (s *Service) Create(ctx context.Context, authorID, postID uint64, body string) (model.Comment, error) {
	body, err := NormalizeBody(body)
	if err != nil {
		return model.Comment{}, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return model.Comment{}, err
	}
	return s.store.Insert(ctx, postID, authorID, body)
}

// Approve makes a pending comment public and returns it.
func (s *Service) Approve(ctx context.Context, id uint64) (model.Comment, error) {
	ok, err := s.store.ApproveIfPending(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}
	if !ok {
		return model.Comment{}, s.explain(ctx, id, Approve)
	}
	c, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		// withdrawn right after approval
		return model.Comment{}, ErrNotFound
	}
	return c, err
}

// Reject deletes a pending comment.
func (s *Service) Reject(ctx context.Context, id uint64) error {
	ok, err := s.store.DeleteIfPending(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return s.explain(ctx, id, Reject)
	}
	return nil
}

// Withdraw deletes a comment in any state.  Callers check ownership first.
func (s *Service) Withdraw(ctx context.Context, id uint64) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uint64) (model.Comment, error) {
	c, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c, ErrNotFound
	}
	return c, err
}

// ListApproved returns the public comments of a post, oldest first.
func (s *Service) ListApproved(ctx context.Context, postID uint64) ([]model.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.ListByStatus(ctx, postID, model.CommentApproved)
}

// Queue returns every comment awaiting moderation, oldest first.
func (s *Service) Queue(ctx context.Context) ([]model.Comment, error) {
	return s.store.Pending(ctx)
}

// explain works out why a conditional transition touched no row.
func (s *Service) explain(ctx context.Context, id uint64, ev Event) error {
	c, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := Next(Status(c.Status), ev); err != nil {
		return err
	}
	// Still pending after a failed conditional write; only possible if a
	// status ever moves back to pending.
	return ErrAlreadyModerated
}

func (s *Service) requirePost(ctx context.Context, postID uint64) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}
