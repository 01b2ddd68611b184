package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/linklair/internal/apperror"
	"github.com/sakif/linklair/internal/model"
	"github.com/sakif/linklair/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// Create inserts a new user row.
//
// The ID (an xid — 20 chars, URL-safe, time-sortable) and CreatedAt are
// assigned here and written back through the pointer, so the caller gets the
// canonical record without a second query.
//
// CONFLICT CLASSIFICATION:
// The UNIQUE constraints on username and email are the only arbiter of
// duplicates — there is no pre-check SELECT, because a pre-check would race
// with a concurrent insert. When the constraint fires we translate it into
// an apperror.Conflict naming the offending field, with the same generic
// message either way.
func (db *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			field := "username"
			if constraint == "users.email" {
				field = "email"
			}
			return apperror.Conflict(field, "username or email already exists")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByEmail retrieves a user by email.
// Returns apperror.ErrNotFound when no account has that email — the service
// layer maps that to the same generic 401 as a wrong password.
func (db *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `SELECT id, username, email, password_hash, created_at
		 FROM users WHERE email = ?`, email)
}

// GetByID retrieves a user by internal ID.
func (db *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT id, username, email, password_hash, created_at
		 FROM users WHERE id = ?`, id)
}

func (db *UserDB) getUser(ctx context.Context, query, key string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx, query, key).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", key, err)
	}

	return &u, nil
}
