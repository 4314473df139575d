// ABOUTME: Desk user accounts: lookup by username, bootstrap seeding and password overwrite
// ABOUTME: Password hashes are produced by the caller; the store never sees plaintext

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when a user doesn't exist.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when trying to create a user with an existing username.
var ErrUsernameExists = errors.New("username already exists")

// RoleAdmin is the only role the desk knows about
const RoleAdmin = "admin"

// User is a desk operator account
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
}

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	CreateUserIfNone(ctx context.Context, user *User) (bool, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
}

type userRow struct {
	ID           int64          `db:"id"`
	Username     string         `db:"username"`
	PasswordHash string         `db:"password_hash"`
	Role         sql.NullString `db:"role"`
}

func (r userRow) toUser() *User {
	return &User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         r.Role.String,
	}
}

// CreateUser inserts a new user and sets user.ID.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query, user.Username, user.PasswordHash, user.Role)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting user id: %w", err)
	}
	user.ID = id

	s.logger.Info("created user", "id", user.ID, "username", user.Username, "role", user.Role)
	return nil
}

// CreateUserIfNone inserts user only when the users table is empty.
// The check and the insert are one statement. Returns true if the user was created.
func (s *SQLiteStore) CreateUserIfNone(ctx context.Context, user *User) (bool, error) {
	query := `
		INSERT INTO users (username, password_hash, role)
		SELECT ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM users)
	`

	result, err := s.db.ExecContext(ctx, query, user.Username, user.PasswordHash, user.Role)
	if err != nil {
		return false, fmt.Errorf("seeding user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("getting user id: %w", err)
	}
	user.ID = id

	s.logger.Info("created default user", "id", user.ID, "username", user.Username)
	return true, nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT id, username, password_hash, role FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return row.toUser(), nil
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT id, username, password_hash, role FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by username: %w", err)
	}
	return row.toUser(), nil
}

// UpdateUserPassword overwrites a user's password hash.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	s.logger.Info("updated user password", "id", id)
	return nil
}

// CountUsers returns the number of users. Only tests call it; the desk
// never needs a head count.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
