package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/linklair/internal/apperror"
	"github.com/sakif/linklair/internal/model"
)

// =========================================================================
// Create TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	users := newTestDB(t).Users()

	user := &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
	}

	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Create assigns ID and CreatedAt through the pointer.
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	users := newTestDB(t).Users()

	createTestUser(t, users, "first", "shared@example.com")

	duplicate := &model.User{
		Username:     "second",
		Email:        "shared@example.com",
		PasswordHash: "x",
	}
	err := users.Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should fail for a duplicate email")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "email" {
		t.Errorf("Conflict field = %q, want %q", appErr.Field, "email")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	users := newTestDB(t).Users()

	createTestUser(t, users, "shared", "one@example.com")

	duplicate := &model.User{
		Username:     "shared",
		Email:        "two@example.com",
		PasswordHash: "x",
	}
	err := users.Create(context.Background(), duplicate)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "username" {
		t.Errorf("Conflict field = %q, want %q", appErr.Field, "username")
	}
}

// =========================================================================
// Lookup TESTS
// =========================================================================

func TestUserGetByEmail(t *testing.T) {
	users := newTestDB(t).Users()
	created := createTestUser(t, users, "bob", "bob@example.com")

	got, err := users.GetByEmail(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() ID = %q, want %q", got.ID, created.ID)
	}
	if got.PasswordHash != created.PasswordHash {
		t.Error("GetByEmail() did not return the stored password hash")
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	users := newTestDB(t).Users()

	_, err := users.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID(t *testing.T) {
	users := newTestDB(t).Users()
	created := createTestUser(t, users, "carol", "carol@example.com")

	got, err := users.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "carol" {
		t.Errorf("GetByID() username = %q, want %q", got.Username, "carol")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	users := newTestDB(t).Users()

	_, err := users.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}
