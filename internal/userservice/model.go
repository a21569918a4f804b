package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sushihentaime/blogcontent/internal/common"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrNotFound          = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version`

	args := []any{
		u.Username,
		u.Email,
		u.Password.hash,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.Version)
	if err != nil {
		switch {
		case common.UniqueViolation(err, "users_username_key"):
			return ErrDuplicateUsername
		case common.UniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}
	return nil
}

const userColumns = "id, username, email, created_at, version"

func (m *DBModel) getUserByUsername(ctx context.Context, username string) (*User, error) {
	query := "SELECT " + userColumns + ", password FROM users WHERE username = $1"
	return m.queryUser(ctx, query, username, true)
}

func (m *DBModel) getUserByID(ctx context.Context, id int64) (*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	return m.queryUser(ctx, query, id, false)
}

// queryUser scans a single row selected with userColumns, optionally followed by the password hash.
func (m *DBModel) queryUser(ctx context.Context, query string, arg any, withHash bool) (*User, error) {
	var u User

	dest := []any{&u.ID, &u.Username, &u.Email, &u.CreatedAt, &u.Version}
	if withHash {
		dest = append(dest, &u.Password.hash)
	}

	err := m.db.QueryRowContext(ctx, query, arg).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}
