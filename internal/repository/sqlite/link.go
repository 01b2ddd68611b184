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

// compile-time check that *LinkDB implements repository.LinkRepository
var _ repository.LinkRepository = (*LinkDB)(nil)

// Create inserts a new link row. Single atomic INSERT — on any failure no
// partial state is left behind.
//
// A UNIQUE violation on short_code becomes repository.ErrShortCodeTaken so
// the service layer can regenerate and retry; every other error is a real
// storage failure.
func (db *LinkDB) Create(ctx context.Context, link *model.Link) error {
	link.ID = xid.New().String()
	link.CreatedAt = time.Now().UTC()

	// An empty owner is stored as NULL so the foreign key to users(id)
	// only applies to owned links.
	var owner sql.NullString
	if link.UserID != "" {
		owner = sql.NullString{String: link.UserID, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO links (id, original_url, short_code, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		link.ID,
		link.OriginalURL,
		link.ShortCode,
		owner,
		link.CreatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "links.short_code" {
			return repository.ErrShortCodeTaken
		}
		return fmt.Errorf("sqlite: inserting link %q: %w", link.ShortCode, err)
	}

	return nil
}

// GetByShortCode retrieves a link by its code. Point lookup, no side effects.
// Returns apperror.ErrNotFound for a code that was never issued.
func (db *LinkDB) GetByShortCode(ctx context.Context, shortCode string) (*model.Link, error) {
	var (
		l     model.Link
		owner sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, original_url, short_code, user_id, created_at
		 FROM links WHERE short_code = ?`,
		shortCode,
	).Scan(
		&l.ID,
		&l.OriginalURL,
		&l.ShortCode,
		&owner,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("link", shortCode)
		}
		return nil, fmt.Errorf("sqlite: getting link %q: %w", shortCode, err)
	}

	l.UserID = owner.String
	return &l, nil
}

// ListByOwner returns all links belonging to ownerID, newest first.
// An owner with no links gets an empty slice, not an error.
func (db *LinkDB) ListByOwner(ctx context.Context, ownerID string) ([]model.Link, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, original_url, short_code, user_id, created_at
		 FROM links WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing links for user %q: %w", ownerID, err)
	}
	defer rows.Close()

	links := []model.Link{}
	for rows.Next() {
		var (
			l     model.Link
			owner sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.OriginalURL, &l.ShortCode, &owner, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning link row: %w", err)
		}
		l.UserID = owner.String
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating link rows: %w", err)
	}

	return links, nil
}
