package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-entropy"

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time            { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCodec() (*Codec, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewCodec(testSecret, time.Hour).WithClock(clk.now), clk
}

func TestCodecRoundTrip(t *testing.T) {
	c, clk := newTestCodec()

	tok, err := c.Issue(42, 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, tok.ExpiresAt.Equal(clk.t.Add(30*time.Minute)))

	claims, err := c.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.SubjectID)
	assert.True(t, claims.IssuedAt.Equal(clk.t))
	assert.True(t, claims.ExpiresAt.Equal(tok.ExpiresAt))
}

func TestCodecDefaultTTL(t *testing.T) {
	c, clk := newTestCodec()
	tok, err := c.Issue(7, 0)
	require.NoError(t, err)
	assert.True(t, tok.ExpiresAt.Equal(clk.t.Add(time.Hour)))

	assert.Equal(t, DefaultTokenTTL, NewCodec(testSecret, 0).defaultTTL)
}

func TestCodecIssueRejectsEmptySubject(t *testing.T) {
	c, _ := newTestCodec()
	_, err := c.Issue(0, time.Minute)
	assert.Error(t, err)
}

func TestCodecExpiry(t *testing.T) {
	c, clk := newTestCodec()
	tok, err := c.Issue(1, time.Hour)
	require.NoError(t, err)

	clk.advance(59 * time.Minute)
	_, err = c.Verify(tok.Value)
	require.NoError(t, err)

	clk.advance(time.Minute)
	_, err = c.Verify(tok.Value)
	assert.ErrorIs(t, err, ErrExpired)

	clk.advance(24 * time.Hour)
	_, err = c.Verify(tok.Value)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodecWrongSecret(t *testing.T) {
	c, clk := newTestCodec()
	tok, err := c.Issue(1, time.Hour)
	require.NoError(t, err)

	other := NewCodec("another-secret", time.Hour).WithClock(clk.now)
	_, err = other.Verify(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// a bad signature wins over expiry
	clk.advance(2 * time.Hour)
	_, err = other.Verify(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodecRejectsOtherAlgorithms(t *testing.T) {
	c, clk := newTestCodec()
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		IssuedAt:  jwt.NewNumericDate(clk.t),
		ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour)),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = c.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodecMalformed(t *testing.T) {
	c, clk := newTestCodec()

	for _, raw := range []string{"", "abc", "a.b", "a.b.c", "....", "Bearer x.y.z"} {
		_, err := c.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformed, "raw=%q", raw)
	}

	sign := func(claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}

	noExp := sign(jwt.RegisteredClaims{Subject: "1", IssuedAt: jwt.NewNumericDate(clk.t)})
	_, err := c.Verify(noExp)
	assert.ErrorIs(t, err, ErrMalformed)

	badSub := sign(jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour))})
	_, err = c.Verify(badSub)
	assert.ErrorIs(t, err, ErrMalformed)

	zeroSub := sign(jwt.RegisteredClaims{Subject: "0", ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour))})
	_, err = c.Verify(zeroSub)
	assert.ErrorIs(t, err, ErrMalformed)
}

// Every single-bit change to the header, payload or signature must be
// rejected.  Bits are flipped in the decoded bytes so the segment is still
// canonical base64.
func TestCodecRejectsEveryBitFlip(t *testing.T) {
	c, _ := newTestCodec()
	tok, err := c.Issue(12345, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok.Value, ".")
	require.Len(t, parts, 3)

	enc := base64.RawURLEncoding
	for seg := range parts {
		raw, err := enc.DecodeString(parts[seg])
		require.NoError(t, err)
		for i := range raw {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), raw...)
				mutated[i] ^= 1 << bit

				cp := append([]string(nil), parts...)
				cp[seg] = enc.EncodeToString(mutated)
				_, err := c.Verify(strings.Join(cp, "."))
				if !assert.Error(t, err, "segment %d byte %d bit %d", seg, i, bit) {
					return
				}
			}
		}
	}
}
