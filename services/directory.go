package services

import (
	"context"

	"github.com/lifecheck/lifecheck/models"
)

// UserStore is the persistence collaborator the directory and the
// registration flow depend on. Lookups return ErrUserNotFound when no row
// matches; Create returns ErrUsernameTaken or ErrEmailTaken on unique-key
// violations.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Principal is the resolved identity attached to an authenticated request.
// It is immutable once built; the password hash is carried only so the login
// flow can verify credentials and is never serialized.
type Principal struct {
	UserID       uint    `json:"user_id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Roles        RoleSet `json:"roles"`
}

// HasRole reports whether the principal carries the role.
func (p Principal) HasRole(role string) bool {
	return p.Roles.Has(role)
}

// UserDirectory resolves usernames to principals. It is used both at login
// to verify credentials and at authenticated-request time to attach
// authorities.
type UserDirectory struct {
	users UserStore
}

// NewUserDirectory creates a directory over the given user store.
func NewUserDirectory(users UserStore) *UserDirectory {
	return &UserDirectory{users: users}
}

// ResolvePrincipal loads the user record and parses its role set.
// Returns ErrUserNotFound for unknown usernames.
func (d *UserDirectory) ResolvePrincipal(ctx context.Context, username string) (Principal, error) {
	user, err := d.users.FindByUsername(ctx, username)
	if err != nil {
		return Principal{}, err
	}
	return Principal{
		UserID:       user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Roles:        ParseRoleSet(user.Roles),
	}, nil
}
