package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/linklair/internal/apperror"
	"github.com/sakif/linklair/internal/model"
	"github.com/sakif/linklair/internal/repository"
)

// =========================================================================
// Create TESTS
// =========================================================================

func TestLinkCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "alice", "alice@example.com")
	links := db.Links()

	link := &model.Link{
		OriginalURL: "https://example.com",
		ShortCode:   "abc12345",
		UserID:      owner.ID,
	}
	if err := links.Create(context.Background(), link); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if link.ID == "" {
		t.Error("Create() did not set link.ID")
	}
	if link.CreatedAt.IsZero() {
		t.Error("Create() did not set link.CreatedAt")
	}
}

func TestLinkCreate_Unowned(t *testing.T) {
	links := newTestDB(t).Links()

	link := &model.Link{
		OriginalURL: "https://example.com",
		ShortCode:   "unowned1",
	}
	if err := links.Create(context.Background(), link); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := links.GetByShortCode(context.Background(), "unowned1")
	if err != nil {
		t.Fatalf("GetByShortCode() error = %v", err)
	}
	if got.UserID != "" {
		t.Errorf("unowned link came back with owner %q", got.UserID)
	}
}

func TestLinkCreate_DuplicateShortCode(t *testing.T) {
	links := newTestDB(t).Links()
	createTestLink(t, links, "collide1", "https://example.com/a", "")

	duplicate := &model.Link{
		OriginalURL: "https://example.com/b",
		ShortCode:   "collide1",
	}
	err := links.Create(context.Background(), duplicate)
	// The collision signal must be the retryable sentinel, not a Conflict —
	// the service regenerates on it instead of failing the request.
	if !errors.Is(err, repository.ErrShortCodeTaken) {
		t.Errorf("Create() error = %v, want ErrShortCodeTaken", err)
	}
}

func TestLinkCreate_UnknownOwnerRejected(t *testing.T) {
	links := newTestDB(t).Links()

	link := &model.Link{
		OriginalURL: "https://example.com",
		ShortCode:   "orphan01",
		UserID:      "no-such-user",
	}
	// foreign_keys=ON means an owner reference must point at a real user.
	if err := links.Create(context.Background(), link); err == nil {
		t.Error("Create() accepted a link owned by a nonexistent user")
	}
}

// =========================================================================
// GetByShortCode TESTS
// =========================================================================

func TestLinkGetByShortCode(t *testing.T) {
	links := newTestDB(t).Links()
	createTestLink(t, links, "findme01", "https://example.com/target", "")

	got, err := links.GetByShortCode(context.Background(), "findme01")
	if err != nil {
		t.Fatalf("GetByShortCode() error = %v", err)
	}
	if got.OriginalURL != "https://example.com/target" {
		t.Errorf("GetByShortCode() URL = %q, want %q", got.OriginalURL, "https://example.com/target")
	}
}

func TestLinkGetByShortCode_NotFound(t *testing.T) {
	links := newTestDB(t).Links()

	_, err := links.GetByShortCode(context.Background(), "neverwas")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByShortCode() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// ListByOwner TESTS
// =========================================================================

func TestLinkListByOwner_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "alice", "alice@example.com")
	links := db.Links()

	first := createTestLink(t, links, "order001", "https://example.com/1", owner.ID)
	time.Sleep(5 * time.Millisecond) // distinct created_at
	second := createTestLink(t, links, "order002", "https://example.com/2", owner.ID)

	got, err := links.ListByOwner(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByOwner() returned %d links, want 2", len(got))
	}
	if got[0].ShortCode != second.ShortCode || got[1].ShortCode != first.ShortCode {
		t.Errorf("ListByOwner() order = [%s, %s], want newest first [%s, %s]",
			got[0].ShortCode, got[1].ShortCode, second.ShortCode, first.ShortCode)
	}
}

func TestLinkListByOwner_Empty(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "lonely", "lonely@example.com")

	got, err := db.Links().ListByOwner(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if got == nil {
		t.Error("ListByOwner() returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("ListByOwner() returned %d links, want 0", len(got))
	}
}

func TestLinkListByOwner_ExcludesOthers(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db.Users(), "alice", "alice@example.com")
	bob := createTestUser(t, db.Users(), "bob", "bob@example.com")
	links := db.Links()

	createTestLink(t, links, "alicexx1", "https://example.com/a", alice.ID)
	createTestLink(t, links, "bobxxxx1", "https://example.com/b", bob.ID)
	createTestLink(t, links, "nobody01", "https://example.com/n", "")

	got, err := links.ListByOwner(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(got) != 1 || got[0].ShortCode != "alicexx1" {
		t.Errorf("ListByOwner() = %v, want exactly alice's link", got)
	}
}
