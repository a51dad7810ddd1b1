// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// ShortURL represents one shortened URL and its aggregate click counter.
//
// The `json:"..."` tags tell the JSON codec how to serialize this struct.
// Field names follow the wire format the frontend already consumes
// (snake_case), so the tags differ from the Go names.
//
// INVARIANTS:
//   - ShortCode is globally unique (UNIQUE index in the DB) and never
//     changes after the row is inserted.
//   - ClickCount starts at 0 and equals the number of Click rows that
//     reference this URL once in-flight recordings settle. The click
//     repository maintains this by inserting the Click row and bumping
//     the counter inside a single transaction.
type ShortURL struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Click is one recorded visit to a ShortURL.
//
// Clicks are immutable: they are inserted once during a redirect and never
// updated. They have no lifecycle of their own — deleting a ShortURL
// deletes its clicks first, in the same transaction (composition, not a
// loose foreign key).
//
// UserAgent, IPAddress and Referrer are plain strings with "" meaning
// "not supplied". We deliberately avoid *string here: an empty header and
// an absent header are indistinguishable to this service, and values are
// only ever displayed, so the zero value is safe.
type Click struct {
	ID        int64     `json:"id"`
	URLID     int64     `json:"url_id"`
	ClickedAt time.Time `json:"clicked_at"`
	UserAgent string    `json:"user_agent,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
}
