package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from Status
		ev   Event
		to   Status
		err  error
	}{
		{Pending, Approve, Approved, nil},
		{Pending, Reject, Deleted, nil},
		{Pending, Withdraw, Deleted, nil},
		{Approved, Approve, Approved, ErrAlreadyModerated},
		{Approved, Reject, Approved, ErrAlreadyModerated},
		{Approved, Withdraw, Deleted, nil},
		{Deleted, Approve, Deleted, ErrNotFound},
		{Deleted, Withdraw, Deleted, ErrNotFound},
		{Pending, Event("publish"), Pending, ErrUnknownEvent},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			got, err := Next(tt.from, tt.ev)
			assert.Equal(t, tt.to, got)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestNormalizeBody(t *testing.T) {
	b, err := NormalizeBody("  hello  ")
	assert.NoError(t, err)
	assert.Equal(t, "hello", b)

	_, err = NormalizeBody("   ")
	assert.ErrorIs(t, err, ErrInvalidBody)

	long := make([]rune, MaxBodyLength)
	for i := range long {
		long[i] = 'é'
	}
	_, err = NormalizeBody(string(long))
	assert.NoError(t, err, "length counts characters, not bytes")
	_, err = NormalizeBody(string(long) + "x")
	assert.ErrorIs(t, err, ErrInvalidBody)
}
