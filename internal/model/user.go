package model

import "time"

// Role values stored in users.role.
const (
    RoleRegular = "regular"
    RoleAdmin   = "admin"
)

// User represents an application user record as stored in the `users`
// table.  The password and verification hashes never leave the repository
// and handler layers; API responses use their own DTOs.
//
// Fields:
//  ID                    – primary key identifier of the user.
//  Username              – unique (case-insensitive) display name.
//  Email                 – unique, lower-cased e-mail address.
//  PasswordHash          – bcrypt hashed password.
//  Role                  – "regular" or "admin".
//  EmailVerified         – set once the verification link was followed.
//  VerificationTokenHash – SHA-256 of the outstanding verification token.
//  VerificationExpiresAt – when that token stops being accepted.
type User struct {
    ID                    uint64     `db:"id"`
    Username              string     `db:"username"`
    Email                 string     `db:"email"`
    PasswordHash          string     `db:"password_hash"`
    Role                  string     `db:"role"`
    EmailVerified         bool       `db:"email_verified"`
    VerificationTokenHash *string    `db:"verification_token_hash"`
    VerificationExpiresAt *time.Time `db:"verification_expires_at"`
    CreatedAt             time.Time  `db:"created_at"`
    UpdatedAt             time.Time  `db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
