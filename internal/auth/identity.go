package auth

import "github.com/iliyamo/blog-api/internal/model"

// Identity is the resolved caller of a request.
type Identity struct {
	ID            uint64
	Username      string
	Email         string
	Role          string
	EmailVerified bool
}

func (i *Identity) IsAdmin() bool { return i != nil && i.Role == model.RoleAdmin }

// IdentityFromUser projects a stored user onto the fields the request
// pipeline needs.
func IdentityFromUser(u model.User) Identity {
	return Identity{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}
