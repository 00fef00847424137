package models

import "time"

// SearchEntry is one distinct lookup recorded in search history.
type SearchEntry struct {
	ID         int64     `json:"id"`
	Query      string    `json:"query"`
	Address    string    `json:"address"`
	Name       string    `json:"name,omitempty"`
	Hits       int       `json:"hits"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// CacheEntry is a persisted cache value.
type CacheEntry struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
