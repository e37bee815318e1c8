package auth

import (
	"context"
	"errors"
	"log"
	"strings"
)

// IdentityStore looks up accounts by id.  Implementations must return
// ErrIdentityNotFound when the account does not exist.
type IdentityStore interface {
	FindByID(ctx context.Context, id uint64) (Identity, error)
}

// Resolver turns an Authorization header into an Identity.
type Resolver struct {
	codec *Codec
	store IdentityStore
}

func NewResolver(codec *Codec, store IdentityStore) *Resolver {
	return &Resolver{codec: codec, store: store}
}

// Resolve returns the caller behind header.  A nil identity with a nil
// error means the request is anonymous: the header is absent or does not
// use the Bearer scheme.  A Bearer header whose token cannot be trusted is
// always an error, never anonymous.
func (r *Resolver) Resolve(ctx context.Context, header string) (id *Identity, err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("auth: panic during identity resolution: %v", p)
			id, err = nil, ErrAuthenticationFailed
		}
	}()

	raw, ok := bearerToken(header)
	if !ok {
		return nil, nil
	}
	if raw == "" {
		return nil, ErrMalformed
	}

	claims, err := r.codec.Verify(raw)
	if err != nil {
		return nil, err
	}

	found, err := r.store.FindByID(ctx, claims.SubjectID)
	switch {
	case err == nil:
		return &found, nil
	case errors.Is(err, ErrIdentityNotFound):
		return nil, ErrIdentityNotFound
	default:
		log.Printf("auth: identity lookup for subject %d failed: %v", claims.SubjectID, err)
		return nil, ErrAuthenticationFailed
	}
}

// bearerToken extracts the credential from "Bearer <token>".  The scheme is
// matched case-insensitively; ok is false for any other scheme.
func bearerToken(header string) (token string, ok bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	scheme, rest, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// Message is the client-facing text for a resolution failure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "token has expired, please log in again"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid token signature"
	case errors.Is(err, ErrMalformed):
		return "malformed token"
	case errors.Is(err, ErrIdentityNotFound):
		return "account no longer exists"
	default:
		return ErrAuthenticationFailed.Error()
	}
}
