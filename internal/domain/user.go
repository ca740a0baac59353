package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// Role codes known to the application.
const (
	RoleStudent = "student"
	RoleHost    = "host"
	RoleAdmin   = "admin"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role represents an application role (student, host, admin).
type Role struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	AssignRole(ctx context.Context, userID, roleID string) error
}

// RoleRepository defines the interface for role storage.
type RoleRepository interface {
	GetByCode(ctx context.Context, code string) (*Role, error)
	ListByUserID(ctx context.Context, userID string) ([]*Role, error)
}

// TokenClaims is the identity extracted from a verified access token.
type TokenClaims struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole reports whether the claims carry the given role code.
func (c *TokenClaims) HasRole(code string) bool {
	for _, r := range c.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// TokenIssuer issues access tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// AuthService defines signup and login operations.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name, role string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, err error)
}
