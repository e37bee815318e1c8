package utils // package utils provides password hashing and one-time token helpers

import (
    "crypto/sha256" // SHA-256 hashing for verification tokens
    "encoding/hex"  // hex encoding of digests
    "time"          // expiry calculation

    "github.com/google/uuid" // random token material
)

// VerificationToken is a one-time e-mail verification token.  Raw is sent
// to the user and never stored; Hash is what the users table keeps.
type VerificationToken struct {
    Raw  string
    Hash string
    Exp  time.Time
}

// NewVerificationToken returns a random token that expires ttl from now.
// uuid.NewRandom reads from crypto/rand, so the token is unguessable.
func NewVerificationToken(ttl time.Duration) (VerificationToken, error) {
    id, err := uuid.NewRandom()
    if err != nil {
        return VerificationToken{}, err
    }
    raw := id.String()
    return VerificationToken{
        Raw:  raw,
        Hash: HashToken(raw),
        Exp:  time.Now().UTC().Add(ttl),
    }, nil
}

// HashToken returns the hex SHA-256 digest of raw.  Lookups always go
// through the digest so a leaked table row cannot be replayed as a link.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
