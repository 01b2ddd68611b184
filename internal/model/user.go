// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Username and Email each carry a UNIQUE constraint in the database — the
// constraint, not application code, is what serializes concurrent
// registrations for the same value.
//
// WHY PasswordHash IS json:"-"?
// The digest must never leave the server. The `json:"-"` tag tells
// encoding/json to skip the field entirely, so even if a handler marshals a
// whole User by accident, the hash cannot appear in a response body.
// The digest is a self-describing argon2id string (it encodes algorithm,
// parameters, and salt), so no separate salt column is needed.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
