package likes

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/blog-api/internal/database/dbtest"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
)

// memStore emulates a unique key in memory.
type memStore struct {
	mu        sync.Mutex
	pairs     map[[2]uint64]bool
	posts     map[uint64]bool
	insertErr error
}

func newMemStore(posts ...uint64) *memStore {
	m := &memStore{pairs: map[[2]uint64]bool{}, posts: map[uint64]bool{}}
	for _, p := range posts {
		m.posts[p] = true
	}
	return m
}

func (m *memStore) PostExists(_ context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posts[id], nil
}

func (m *memStore) Insert(_ context.Context, postID, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	k := [2]uint64{postID, userID}
	if m.pairs[k] {
		return repository.ErrConflict
	}
	m.pairs[k] = true
	return nil
}

func (m *memStore) Delete(_ context.Context, postID, userID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := [2]uint64{postID, userID}
	had := m.pairs[k]
	delete(m.pairs, k)
	return had, nil
}

func (m *memStore) Count(_ context.Context, postID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.pairs {
		if k[0] == postID {
			n++
		}
	}
	return n, nil
}

func TestLikeIsIdempotent(t *testing.T) {
	g := NewGuard(newMemStore(1))
	ctx := context.Background()

	res, err := g.Like(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, Result{LikesCount: 1}, res)

	res, err = g.Like(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, Result{AlreadyLiked: true, LikesCount: 1}, res)

	res, err = g.Like(ctx, 8, 1)
	require.NoError(t, err)
	assert.Equal(t, Result{LikesCount: 2}, res)
}

func TestUnlike(t *testing.T) {
	g := NewGuard(newMemStore(1))
	ctx := context.Background()

	res, err := g.Unlike(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res, "unliking without a like is a no-op")

	_, err = g.Like(ctx, 7, 1)
	require.NoError(t, err)
	res, err = g.Unlike(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, Result{Removed: true}, res)
}

func TestMissingPost(t *testing.T) {
	g := NewGuard(newMemStore())
	_, err := g.Like(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = g.Unlike(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestStoreFailureSurfaces(t *testing.T) {
	st := newMemStore(1)
	st.insertErr = errors.New("disk full")
	_, err := NewGuard(st).Like(context.Background(), 7, 1)
	assert.ErrorIs(t, err, st.insertErr)
}

// N concurrent likes by one user against a real database produce exactly
// one row; every other call reports AlreadyLiked.
func TestConcurrentLikesOnDatabase(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	users := repository.NewUserRepo(db)
	uid, err := users.Create(ctx, repository.NewUser{Username: "fan", Email: "fan@example.com", Password: "secret1", Role: model.RoleAdmin}, bcrypt.MinCost)
	require.NoError(t, err)
	p, err := repository.NewPostRepo(db).Create(ctx, uid, "Concurrency post", "body")
	require.NoError(t, err)

	g := NewGuard(repository.NewLikeRepo(db))

	const n = 16
	results := make([]Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = g.Like(ctx, uid, p.ID)
		}(i)
	}
	wg.Wait()

	already := 0
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(1), results[i].LikesCount)
		if results[i].AlreadyLiked {
			already++
		}
	}
	assert.Equal(t, n-1, already)

	count, err := repository.NewLikeRepo(db).Count(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
