package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL applies when neither the caller nor the configuration
// supplies a lifetime.
const DefaultTokenTTL = 24 * time.Hour

// Token is a signed access token and its absolute expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Claims is what Verify recovers from a valid token.
type Claims struct {
	SubjectID uint64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies HS256 access tokens with a single shared
// secret.  It holds no mutable state and is safe for concurrent use.
type Codec struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// NewCodec builds a codec around secret.  A non-positive defaultTTL falls
// back to DefaultTokenTTL.
func NewCodec(secret string, defaultTTL time.Duration) *Codec {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}
	return &Codec{secret: []byte(secret), defaultTTL: defaultTTL, now: time.Now}
}

// WithClock returns a copy of the codec that reads the time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue signs a token for subjectID that expires ttl from now.  A
// non-positive ttl means the codec's default lifetime.
func (c *Codec) Issue(subjectID uint64, ttl time.Duration) (Token, error) {
	if subjectID == 0 {
		return Token{}, errors.New("issue token: empty subject")
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(subjectID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	// NumericDate drops sub-second precision; report what the token carries.
	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
// Failures are ErrMalformed, ErrInvalidSignature or ErrExpired.
func (c *Codec) Verify(raw string) (Claims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, classify(err)
	}

	sub, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || sub == 0 {
		return Claims{}, ErrMalformed
	}
	out := Claims{SubjectID: sub, ExpiresAt: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// classify maps jwt parse errors onto the package taxonomy.  Order matters:
// a token with a bad signature is never reported as expired.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		// missing exp, bad iat/nbf types and the like
		return ErrMalformed
	}
}
