package repository

import (
	"context"
	"errors"

	"github.com/sakif/linklair/internal/model"
)

// ErrShortCodeTaken is returned by LinkRepository.Create when the generated
// short code collides with an existing row's UNIQUE constraint. It is the
// signal for the service layer to regenerate and retry — it never reaches a
// client directly.
var ErrShortCodeTaken = errors.New("repository: short code already exists")

// UserRepository persists and looks up user records.
//
// Create assigns ID and CreatedAt on the passed struct. A duplicate username
// or email surfaces as an apperror.Conflict (the UNIQUE constraint in the
// database is the single arbiter under concurrency). Lookups return
// apperror.ErrNotFound when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// LinkRepository persists link records and queries by code or owner.
//
// Create is a single atomic insert: it either persists the whole row or
// fails with no partial state. ListByOwner orders newest-first and returns
// an empty slice (not an error) for an owner with no links.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByShortCode(ctx context.Context, shortCode string) (*model.Link, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Link, error)
}
