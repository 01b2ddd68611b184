package model

import "time"

// Link maps a generated short code to an original URL.
//
// ShortCode is globally unique (UNIQUE constraint) and fixed-length — it is
// always generated server-side, never supplied by a client.
//
// UserID is the owning user's ID, or "" for an unowned link. An empty value
// is stored as SQL NULL so the foreign key to users(id) only applies when an
// owner is actually set. Links are immutable after creation — there is no
// update path anywhere in the API.
type Link struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	UserID      string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
