package domain

import "time"

// UserRegisteredEvent is emitted after a successful registration.
type UserRegisteredEvent struct {
	UserID       string
	Username     string
	RegisteredAt time.Time
}

// LoginEvent is emitted for every completed login attempt, successful or not.
// ClientIP is masked before it reaches any sink.
type LoginEvent struct {
	Username   string
	ClientIP   string
	Success    bool
	OccurredAt time.Time
}

// DataSavedEvent is emitted after a user's blob has been encrypted and stored.
type DataSavedEvent struct {
	Username   string
	PayloadLen int
	SavedAt    time.Time
}
