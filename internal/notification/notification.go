// Copyright (c) 2026 WealthWave. All rights reserved.

/*
Package notification implements the in-app notification feed.

Feeds live in Redis as one capped list per user: writes LPush a JSON entry
and trim the list to the newest fifty. Auth flows write on a best-effort
basis — the feed is advisory, never load-bearing.
*/
package notification

import (
	"time"
)

// # Domain Entities

// maxKept is the number of notifications retained per user. Older entries
// fall off the end of the list on every write.
const maxKept = 50

// Notification is a single entry in a user's feed.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldID      = "id"
	FieldMessage = "message"
)
