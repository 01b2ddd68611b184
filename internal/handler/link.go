package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/linklair/internal/apperror"
	"github.com/sakif/linklair/internal/auth"
	"github.com/sakif/linklair/internal/service"
)

// LinkHandler exposes link creation, listing, and redirect resolution.
type LinkHandler struct {
	links    *service.LinkService
	baseURL  string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewLinkHandler creates a LinkHandler. baseURL is the public prefix used to
// build short URLs in responses (e.g. "https://lnk.example.com").
func NewLinkHandler(links *service.LinkService, baseURL string, validate *validator.Validate, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		links:    links,
		baseURL:  strings.TrimRight(baseURL, "/"),
		validate: validate,
		logger:   logger,
	}
}

// CreateLinkRequest is the body of POST /api/links.
type CreateLinkRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// CreateLinkResponse carries the full short URL for the new link.
type CreateLinkResponse struct {
	ShortURL string `json:"short_url"`
}

// LinkItem is one element of the GET /api/links response.
type LinkItem struct {
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// HandleCreate shortens a URL for the authenticated caller.
//
// HTTP: POST /api/links
// Auth: required (RequireAuth runs first)
//
// The owner is ALWAYS the authenticated claims' subject — there is no way
// for a request to choose or omit the owner.
func (h *LinkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but never trust route wiring.
		writeError(w, apperror.Unauthorized())
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	link, err := h.links.Shorten(r.Context(), req.URL, claims.UserID())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CreateLinkResponse{
		ShortURL: h.baseURL + "/" + link.ShortCode,
	})
}

// HandleList returns the authenticated caller's links, newest first.
//
// HTTP: GET /api/links
// Auth: required
func (h *LinkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized())
		return
	}

	links, err := h.links.ListByOwner(r.Context(), claims.UserID())
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]LinkItem, 0, len(links))
	for _, l := range links {
		items = append(items, LinkItem{
			OriginalURL: l.OriginalURL,
			ShortCode:   l.ShortCode,
			CreatedAt:   l.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

// HandleRedirect resolves a short code and redirects to the original URL.
//
// HTTP: GET /{shortCode}
//
// A hit answers 301 Moved Permanently — link mappings are immutable, so
// clients and proxies are free to cache the target. An unknown code is a
// plain 404.
func (h *LinkHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("shortCode")
	if code == "" {
		writeError(w, apperror.NotFound("link", code))
		return
	}

	link, err := h.links.Resolve(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusMovedPermanently)
}
