package domain

import "time"

// User represents a registered account. Credential records are created on
// registration and read on login; they are never updated or deleted in-app.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	PasswordAlgo string
	CreatedAt    time.Time
}

// DataRecord holds a user's single encrypted blob. There is at most one
// record per username; a second save overwrites the first.
type DataRecord struct {
	ID        int64
	Username  string
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
