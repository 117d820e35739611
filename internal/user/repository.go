// Package user manages registered accounts and their storage quota.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User represents a registered account. The username feeds the storage
// namespace for the user's uploads.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FullName     string    `json:"fullName"`
	StorageUsed  int64     `json:"storageUsed"`
	MaxStorage   int64     `json:"maxStorage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	PasswordHash string    `json:"-"`
}

// CanStore reports whether the account has quota left for size more bytes.
func (u *User) CanStore(size int64) bool {
	return u.StorageUsed+size <= u.MaxStorage
}

// StorageRemaining returns the unused quota in bytes, never negative.
func (u *User) StorageRemaining() int64 {
	if r := u.MaxStorage - u.StorageUsed; r > 0 {
		return r
	}
	return 0
}

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrAlreadyExists is returned when the email or username is already registered.
var ErrAlreadyExists = errors.New("user already exists")

// Repository handles all user database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, username, full_name, password_hash,
	 storage_used, max_storage, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.PasswordHash,
		&u.StorageUsed, &u.MaxStorage, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user and returns the created record.
func (r *Repository) Create(ctx context.Context, email, username, fullName, passwordHash string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (email, username, full_name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		email, username, fullName, passwordHash,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetByID fetches a user by their UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, err
}

// GetByEmail fetches a user by their email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, err
}

// AddStorageUsed adjusts the account's storage counter by delta bytes,
// clamped at zero.
func (r *Repository) AddStorageUsed(ctx context.Context, id string, delta int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET storage_used = GREATEST(storage_used + $2, 0), updated_at = NOW()
		 WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("update storage used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
