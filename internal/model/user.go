// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account that may manage short URLs.
//
// Identity is the email address, stored case-sensitively and UNIQUE in the
// DB. Accounts are created by the seed tool (cmd/seed) — there is no public
// registration endpoint.
//
// WHY PasswordHash `json:"-"`?
// The dash tag excludes the field from every JSON encoding. User structs
// flow straight into /auth/login and /auth/me responses, and a bcrypt hash
// must never leave the server — even hashed. Opting out at the struct level
// is safer than remembering to strip it in each handler.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
