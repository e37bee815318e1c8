package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/blog-api/internal/auth"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/utils"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, email, password_hash, role, email_verified,
	verification_token_hash, verification_expires_at, created_at, updated_at`

// NewUser carries the fields needed to register an account.
type NewUser struct {
	Username string
	Email    string
	Password string
	Role     string
	// Verification, when set, is stored as the outstanding token.
	Verification *utils.VerificationToken
}

// Create hashes the password, inserts the user and returns its ID.  A
// duplicate e-mail or username yields ErrEmailExists or ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, u NewUser, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	username := strings.TrimSpace(u.Username)
	role := u.Role
	if role == "" {
		role = model.RoleRegular
	}
	hash, err := utils.HashPassword(u.Password, cost)
	if err != nil {
		return 0, err
	}

	var tokHash *string
	var tokExp *time.Time
	if u.Verification != nil {
		tokHash, tokExp = &u.Verification.Hash, &u.Verification.Exp
	}

	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role, email_verified,
			verification_token_hash, verification_expires_at, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		username, email, hash, role, false, tokHash, tokExp, now, now)
	if err != nil {
		if isDuplicateKey(err) {
			if duplicateOn(err, "username") {
				return 0, ErrUsernameExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// FindByID satisfies auth.IdentityStore.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (auth.Identity, error) {
	u, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return auth.Identity{}, auth.ErrIdentityNotFound
	}
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.IdentityFromUser(u), nil
}

// SetVerificationToken replaces the outstanding verification token of an
// unverified user.  It returns ErrConflict when the user is already
// verified and ErrNotFound when the user does not exist.
func (r *UserRepo) SetVerificationToken(ctx context.Context, id uint64, tok utils.VerificationToken) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET verification_token_hash=?, verification_expires_at=?, updated_at=?
		 WHERE id=? AND email_verified=?`,
		tok.Hash, tok.Exp, time.Now().UTC(), id, false)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return ErrConflict
	}
	return nil
}

// VerifyEmail consumes a verification token.  The token is looked up by its
// hash and must not be expired at now.  On success the user is marked
// verified and the token cleared, so it cannot be used twice.
func (r *UserRepo) VerifyEmail(ctx context.Context, rawToken string, now time.Time) (model.User, error) {
	if rawToken == "" {
		return model.User{}, ErrNotFound
	}
	hash := utils.HashToken(rawToken)

	var u model.User
	err := r.DB.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE verification_token_hash=? LIMIT 1", hash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	if u.VerificationExpiresAt == nil || !now.Before(*u.VerificationExpiresAt) {
		return u, ErrNotFound
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email_verified=?, verification_token_hash=NULL, verification_expires_at=NULL, updated_at=?
		 WHERE id=? AND verification_token_hash=?`,
		true, now.UTC(), u.ID, hash)
	if err != nil {
		return u, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// consumed concurrently
		return u, ErrNotFound
	}
	u.EmailVerified = true
	u.VerificationTokenHash, u.VerificationExpiresAt = nil, nil
	return u, nil
}

// PromoteByEmail grants the admin role to the user with email.
func (r *UserRepo) PromoteByEmail(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, updated_at=? WHERE email=?",
		model.RoleAdmin, time.Now().UTC(), email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for a no-op update; tell that apart from a missing row.
		if _, err := r.GetByEmail(ctx, email); err != nil {
			return err
		}
	}
	return nil
}

// duplicateOn reports whether a duplicate-key error names the given users
// column.  MySQL reports the key ("users.uq_users_username"), SQLite the
// column ("users.username").
func duplicateOn(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "uq_users_"+column) || strings.Contains(msg, "users."+column)
}
