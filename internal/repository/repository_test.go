package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/blog-api/internal/auth"
	"github.com/iliyamo/blog-api/internal/database/dbtest"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/utils"
)

type fixture struct {
	users    *UserRepo
	posts    *PostRepo
	comments *CommentRepo
	likes    *LikeRepo
}

func newFixture(t *testing.T) fixture {
	db := dbtest.New(t)
	return fixture{
		users:    NewUserRepo(db),
		posts:    NewPostRepo(db),
		comments: NewCommentRepo(db),
		likes:    NewLikeRepo(db),
	}
}

func (f fixture) user(t *testing.T, name, role string) uint64 {
	t.Helper()
	id, err := f.users.Create(context.Background(), NewUser{
		Username: name, Email: name + "@example.com", Password: "secret1", Role: role,
	}, bcrypt.MinCost)
	require.NoError(t, err)
	return id
}

func TestUserCreateAndLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.users.Create(ctx, NewUser{Username: "alice", Email: "  Alice@Example.COM ", Password: "secret1"}, bcrypt.MinCost)
	require.NoError(t, err)

	u, err := f.users.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, model.RoleRegular, u.Role)
	assert.False(t, u.EmailVerified)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "secret1"))
	assert.False(t, u.CreatedAt.IsZero())

	_, err = f.users.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice", "")

	_, err := f.users.Create(ctx, NewUser{Username: "bob", Email: "ALICE@example.com", Password: "secret1"}, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = f.users.Create(ctx, NewUser{Username: "Alice", Email: "other@example.com", Password: "secret1"}, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestFindByIDIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.user(t, "root", model.RoleAdmin)

	ident, err := f.users.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{ID: id, Username: "root", Email: "root@example.com", Role: model.RoleAdmin}, ident)

	_, err = f.users.FindByID(ctx, id+100)
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := utils.NewVerificationToken(time.Hour)
	require.NoError(t, err)
	id, err := f.users.Create(ctx, NewUser{Username: "carol", Email: "carol@example.com", Password: "secret1", Verification: &tok}, bcrypt.MinCost)
	require.NoError(t, err)

	_, err = f.users.VerifyEmail(ctx, "wrong", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.users.VerifyEmail(ctx, tok.Raw, time.Now().Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound, "expired token")

	u, err := f.users.VerifyEmail(ctx, tok.Raw, time.Now())
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.True(t, u.EmailVerified)

	_, err = f.users.VerifyEmail(ctx, tok.Raw, time.Now())
	assert.ErrorIs(t, err, ErrNotFound, "token is single use")

	again, err := utils.NewVerificationToken(time.Hour)
	require.NoError(t, err)
	assert.ErrorIs(t, f.users.SetVerificationToken(ctx, id, again), ErrConflict)
}

func TestSetVerificationTokenReplacesOld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.user(t, "dave", "")

	first, _ := utils.NewVerificationToken(time.Hour)
	second, _ := utils.NewVerificationToken(time.Hour)
	require.NoError(t, f.users.SetVerificationToken(ctx, id, first))
	require.NoError(t, f.users.SetVerificationToken(ctx, id, second))

	_, err := f.users.VerifyEmail(ctx, first.Raw, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.users.VerifyEmail(ctx, second.Raw, time.Now())
	assert.NoError(t, err)

	assert.ErrorIs(t, f.users.SetVerificationToken(ctx, 999, second), ErrNotFound)
}

func TestPromoteByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.user(t, "erin", "")

	require.NoError(t, f.users.PromoteByEmail(ctx, "ERIN@example.com"))
	u, err := f.users.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	require.NoError(t, f.users.PromoteByEmail(ctx, "erin@example.com"))
	assert.ErrorIs(t, f.users.PromoteByEmail(ctx, "ghost@example.com"), ErrNotFound)
}

func TestPostCRUDAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	reader := f.user(t, "reader", "")

	p, err := f.posts.Create(ctx, admin, "Hello world", "first body")
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Author)
	assert.Zero(t, p.LikesCount)

	require.NoError(t, f.likes.Insert(ctx, p.ID, reader))
	c, err := f.comments.Insert(ctx, p.ID, reader, "pending one")
	require.NoError(t, err)
	_, err = f.comments.Insert(ctx, p.ID, reader, "approved one")
	require.NoError(t, err)
	ok, err := f.comments.ApproveIfPending(ctx, c.ID+1)
	require.NoError(t, err)
	require.True(t, ok)

	p, err = f.posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.LikesCount)
	assert.Equal(t, int64(1), p.CommentsCount, "only approved comments are counted")

	title := "Hello again"
	p, err = f.posts.Update(ctx, p.ID, &title, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", p.Title)
	assert.Equal(t, "first body", p.Body)

	_, err = f.posts.Update(ctx, 999, &title, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	// Resending identical fields is a successful no-op, not a missing post.
	body := "first body"
	for i := 0; i < 2; i++ {
		p, err = f.posts.Update(ctx, p.ID, &title, &body)
		require.NoError(t, err)
		assert.Equal(t, "Hello again", p.Title)
	}

	require.NoError(t, f.posts.Delete(ctx, p.ID))
	assert.ErrorIs(t, f.posts.Delete(ctx, p.ID), ErrNotFound)
	_, err = f.comments.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound, "comments cascade with the post")
	n, err := f.likes.Count(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostListAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)

	for i := 1; i <= 12; i++ {
		body := "plain text"
		if i%4 == 0 {
			body = "all about Golang"
		}
		_, err := f.posts.Create(ctx, admin, fmt.Sprintf("Post number %02d", i), body)
		require.NoError(t, err)
	}

	page, total, err := f.posts.List(ctx, PostQuery{Page: 1, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, page, 5)
	assert.Equal(t, "Post number 12", page[0].Title, "newest first")

	last, _, err := f.posts.List(ctx, PostQuery{Page: 3, PageSize: 5})
	require.NoError(t, err)
	assert.Len(t, last, 2)

	hits, total, err := f.posts.List(ctx, PostQuery{Keyword: "GOLANG"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, hits, 3)

	hits, total, err = f.posts.List(ctx, PostQuery{Keyword: "number 07"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Post number 07", hits[0].Title)
}

func TestPostQueryNormalize(t *testing.T) {
	q := PostQuery{Page: -1, PageSize: 1000, Keyword: "  go "}
	q.Normalize()
	assert.Equal(t, PostQuery{Page: 1, PageSize: 100, Keyword: "go"}, q)

	q = PostQuery{}
	q.Normalize()
	assert.Equal(t, 10, q.PageSize)
}

func TestCommentConditionalWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	reader := f.user(t, "reader", "")
	p, err := f.posts.Create(ctx, admin, "Moderated post", "body")
	require.NoError(t, err)

	c, err := f.comments.Insert(ctx, p.ID, reader, "hi there")
	require.NoError(t, err)
	assert.Equal(t, model.CommentPending, c.Status)
	assert.Equal(t, "reader", c.Username)

	pending, err := f.comments.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	ok, err := f.comments.ApproveIfPending(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.comments.ApproveIfPending(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second approval is a no-op")
	ok, err = f.comments.DeleteIfPending(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok, "approved comments are not rejected")

	approved, err := f.comments.ListByStatus(ctx, p.ID, model.CommentApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, c.CreatedAt.Unix(), approved[0].CreatedAt.Unix())

	ok, err = f.comments.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.comments.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLikeUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	p, err := f.posts.Create(ctx, admin, "Likeable post", "body")
	require.NoError(t, err)

	require.NoError(t, f.likes.Insert(ctx, p.ID, admin))
	err = f.likes.Insert(ctx, p.ID, admin)
	assert.True(t, errors.Is(err, ErrConflict), "got %v", err)

	exists, err := f.likes.Exists(ctx, p.ID, admin)
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := f.likes.Delete(ctx, p.ID, admin)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.likes.Delete(ctx, p.ID, admin)
	require.NoError(t, err)
	assert.False(t, removed)

	ok, err := f.likes.PostExists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.likes.PostExists(ctx, p.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, isDuplicateKey(nil))
	assert.False(t, isDuplicateKey(errors.New("connection reset")))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: likes.post_id, likes.user_id")))
	assert.True(t, isDuplicateKey(fmt.Errorf("wrapped: %w", errors.New("Error 1062: Duplicate entry"))))
}
