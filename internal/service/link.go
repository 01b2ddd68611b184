package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/linklair/internal/apperror"
	"github.com/sakif/linklair/internal/model"
	"github.com/sakif/linklair/internal/repository"
	"github.com/sakif/linklair/internal/shortcode"
)

// maxShortenAttempts bounds the collision-retry loop in Shorten. At 8
// random characters over a 64-symbol alphabet a single collision is already
// unlikely; five in a row means the code space is effectively saturated (or
// something is badly wrong), and we stop rather than spin.
const maxShortenAttempts = 5

// ErrMaxRetriesExceeded is returned (wrapped in an apperror.Conflict) when
// every allocation attempt collided. It marks a capacity problem on our
// side — no client ever supplies a code, so this is distinguishable from a
// client-caused duplicate via errors.Is.
var ErrMaxRetriesExceeded = errors.New("service: maximum retries exceeded for generating short code")

// LinkService handles short-link creation and resolution.
type LinkService struct {
	links  repository.LinkRepository
	codes  *shortcode.Generator
	logger *slog.Logger
}

// NewLinkService creates a LinkService.
func NewLinkService(links repository.LinkRepository, codes *shortcode.Generator, logger *slog.Logger) *LinkService {
	return &LinkService{
		links:  links,
		codes:  codes,
		logger: logger,
	}
}

// Shorten allocates a code for originalURL and persists the link.
//
// ALLOCATION IS GENERATE-THEN-INSERT:
// There is no reservation step. We generate a random code and attempt the
// atomic insert; the UNIQUE constraint on short_code is the only collision
// detector, which makes concurrent allocations safe without any in-process
// locking. On ErrShortCodeTaken we simply generate a fresh code and try
// again, up to maxShortenAttempts.
//
// ownerID binds the link to the authenticated caller; "" creates an unowned
// link (no API path does this today, but the data model allows it).
func (s *LinkService) Shorten(ctx context.Context, originalURL, ownerID string) (*model.Link, error) {
	for attempt := 1; attempt <= maxShortenAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, fmt.Errorf("service/link: %w", err)
		}

		link := &model.Link{
			OriginalURL: originalURL,
			ShortCode:   code,
			UserID:      ownerID,
		}

		err = s.links.Create(ctx, link)
		if err == nil {
			s.logger.Info("link created",
				slog.String("linkID", link.ID),
				slog.String("shortCode", link.ShortCode),
				slog.String("userID", ownerID),
			)
			return link, nil
		}

		if errors.Is(err, repository.ErrShortCodeTaken) {
			s.logger.Warn("short code collision, retrying",
				slog.String("shortCode", code),
				slog.Int("attempt", attempt),
			)
			continue
		}

		s.logger.Error("failed to create link", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/link: creating link: %w", err)
	}

	return nil, conflictExhausted()
}

// Resolve returns the link stored under code, or apperror.ErrNotFound for a
// code that was never issued. Side-effect free.
func (s *LinkService) Resolve(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.links.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err // already a proper apperror on not-found
	}
	return link, nil
}

// ListByOwner returns all of ownerID's links, newest first. An owner with no
// links gets an empty slice.
func (s *LinkService) ListByOwner(ctx context.Context, ownerID string) ([]model.Link, error) {
	links, err := s.links.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list links",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/link: listing links: %w", err)
	}
	return links, nil
}

// conflictExhausted builds the 409-mapped error for a saturated code space.
// Both apperror.ErrConflict and ErrMaxRetriesExceeded stay reachable through
// errors.Is, so operators can tell this apart from an ordinary duplicate.
func conflictExhausted() error {
	return &apperror.AppError{
		Err:     fmt.Errorf("%w: %w", apperror.ErrConflict, ErrMaxRetriesExceeded),
		Message: "could not allocate a unique short code",
	}
}
