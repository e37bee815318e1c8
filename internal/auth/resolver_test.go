package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	users map[uint64]Identity
	err   error
	panic bool
}

func (m *mapStore) FindByID(_ context.Context, id uint64) (Identity, error) {
	if m.panic {
		panic("store exploded")
	}
	if m.err != nil {
		return Identity{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return u, nil
}

func newTestResolver(t *testing.T) (*Resolver, *mapStore, *Codec, *fakeClock) {
	t.Helper()
	c, clk := newTestCodec()
	store := &mapStore{users: map[uint64]Identity{
		1: {ID: 1, Username: "alice", Email: "alice@example.com", Role: "regular", EmailVerified: true},
		2: {ID: 2, Username: "root", Email: "root@example.com", Role: "admin", EmailVerified: true},
	}}
	return NewResolver(c, store), store, c, clk
}

func TestResolveAnonymous(t *testing.T) {
	r, _, _, _ := newTestResolver(t)
	for _, h := range []string{"", "   ", "Basic dXNlcjpwYXNz", "Token abc"} {
		id, err := r.Resolve(context.Background(), h)
		assert.NoError(t, err, "header=%q", h)
		assert.Nil(t, id, "header=%q", h)
	}
}

func TestResolveIdentity(t *testing.T) {
	r, _, c, _ := newTestResolver(t)
	tok, err := c.Issue(2, 0)
	require.NoError(t, err)

	for _, h := range []string{"Bearer " + tok.Value, "bearer " + tok.Value, "BEARER  " + tok.Value + " "} {
		id, err := r.Resolve(context.Background(), h)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, uint64(2), id.ID)
		assert.True(t, id.IsAdmin())
	}
}

func TestResolveFailures(t *testing.T) {
	r, store, c, clk := newTestResolver(t)

	id, err := r.Resolve(context.Background(), "Bearer")
	assert.Nil(t, id)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = r.Resolve(context.Background(), "Bearer not-a-token")
	assert.ErrorIs(t, err, ErrMalformed)

	forged, err := NewCodec("other", time.Hour).Issue(1, 0)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "Bearer "+forged.Value)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	gone, err := c.Issue(99, 0)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "Bearer "+gone.Value)
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	tok, err := c.Issue(1, time.Minute)
	require.NoError(t, err)

	store.err = errors.New("connection refused")
	_, err = r.Resolve(context.Background(), "Bearer "+tok.Value)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	store.err = nil

	store.panic = true
	id, err = r.Resolve(context.Background(), "Bearer "+tok.Value)
	assert.Nil(t, id)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	store.panic = false

	clk.advance(time.Minute)
	_, err = r.Resolve(context.Background(), "Bearer "+tok.Value)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMessageIsDistinctPerFailure(t *testing.T) {
	seen := map[string]bool{}
	for _, err := range []error{ErrExpired, ErrInvalidSignature, ErrMalformed, ErrIdentityNotFound, ErrAuthenticationFailed} {
		msg := Message(err)
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate message %q", msg)
		seen[msg] = true
	}
}
