package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sakif/linklair/internal/apperror"
	"github.com/sakif/linklair/internal/auth"
	"github.com/sakif/linklair/internal/model"
	"github.com/sakif/linklair/internal/repository"
)

// Shared in-memory fakes for the service tests. The services only see the
// repository interfaces, so a map-backed fake is all the "database" they need.

type fakeUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return apperror.Conflict("email", "username or email already exists")
	}
	for _, existing := range r.byID {
		if existing.Username == user.Username {
			return apperror.Conflict("username", "username or email already exists")
		}
	}
	r.nextID++
	user.ID = "user-" + string(rune('a'+r.nextID-1))
	user.CreatedAt = time.Now().UTC()
	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[user.Email] = &clone
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	clone := *user
	return &clone, nil
}

type fakeLinkRepo struct {
	byCode map[string]*model.Link
	nextID int

	// failCreates makes the first N Create calls report a short-code
	// collision, for exercising the retry loop.
	failCreates int
	createCalls int
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{byCode: make(map[string]*model.Link)}
}

var _ repository.LinkRepository = (*fakeLinkRepo)(nil)

func (r *fakeLinkRepo) Create(_ context.Context, link *model.Link) error {
	r.createCalls++
	if r.createCalls <= r.failCreates {
		return repository.ErrShortCodeTaken
	}
	if _, exists := r.byCode[link.ShortCode]; exists {
		return repository.ErrShortCodeTaken
	}
	r.nextID++
	link.ID = "link-" + string(rune('a'+r.nextID-1))
	link.CreatedAt = time.Now().UTC()
	clone := *link
	r.byCode[link.ShortCode] = &clone
	return nil
}

func (r *fakeLinkRepo) GetByShortCode(_ context.Context, code string) (*model.Link, error) {
	link, ok := r.byCode[code]
	if !ok {
		return nil, apperror.NotFound("link", code)
	}
	clone := *link
	return &clone, nil
}

func (r *fakeLinkRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Link, error) {
	links := []model.Link{}
	for _, link := range r.byCode {
		if link.UserID == ownerID {
			links = append(links, *link)
		}
	}
	return links, nil
}

// discardLogger keeps service log output out of test results.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAuthService wires an AuthService against the fake user repo with
// fast (deliberately weak) hashing parameters.
func newTestAuthService(t *testing.T, users repository.UserRepository) *AuthService {
	t.Helper()

	passwords := auth.NewPasswordService(auth.Params{
		Memory:      64,
		Time:        1,
		Parallelism: 1,
		SaltLength:  8,
		KeyLength:   16,
	}, 2)

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	return NewAuthService(users, passwords, tokens, discardLogger())
}
