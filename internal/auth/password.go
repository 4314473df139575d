// ABOUTME: Password hashing, constant-time credential checks and session token generation
// ABOUTME: Also seeds the first desk operator on an empty database

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/2389/frontdesk/internal/store"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
// Callers must not tell the two apart.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is compared against when the user doesn't exist so that a login
// for an unknown username costs the same as one with a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. An empty hash is
// checked against a dummy hash and always fails.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserLookup is the slice of the user store needed to authenticate.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
}

// Authenticate looks up username and verifies password. Unknown users and
// wrong passwords both yield ErrInvalidCredentials after a bcrypt comparison.
func Authenticate(ctx context.Context, users UserLookup, username, password string) (*store.User, error) {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			CheckPassword("", password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UserSeeder creates a user only when none exist.
type UserSeeder interface {
	CreateUserIfNone(ctx context.Context, user *store.User) (bool, error)
}

// EnsureDefaultUser seeds an admin account when the users table is empty.
// Returns true if the account was created by this call.
func EnsureDefaultUser(ctx context.Context, users UserSeeder, username, password string) (bool, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	created, err := users.CreateUserIfNone(ctx, &store.User{
		Username:     username,
		PasswordHash: hash,
		Role:         store.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("seeding default user: %w", err)
	}
	return created, nil
}

// GenerateToken returns n random bytes, hex encoded. Used for session ids
// and CSRF tokens.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
