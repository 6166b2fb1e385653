package domain

import "time"

// User represents a registered account. Registered users bypass the guest
// quota; their presentations are linked by OwnerID.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Locale       string
	CreatedAt    time.Time
}
