package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/linklair/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" gives every test a fresh real database — no disk I/O, no shared
// state, destroyed when the connection closes. Migrations run in New, so the
// schema (including the UNIQUE constraints under test) is the production one.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, users *UserDB, username, email string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=64,t=1,p=1$c2FsdHNhbHQ$ZmFrZWtleWZha2VrZXk",
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestLink creates a link and fails the test if it errors.
func createTestLink(t *testing.T, links *LinkDB, shortCode, originalURL, ownerID string) *model.Link {
	t.Helper()
	link := &model.Link{
		OriginalURL: originalURL,
		ShortCode:   shortCode,
		UserID:      ownerID,
	}
	if err := links.Create(context.Background(), link); err != nil {
		t.Fatalf("failed to create test link: %v", err)
	}
	return link
}
