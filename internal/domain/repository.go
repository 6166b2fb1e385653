package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// PresentationRepository defines persistence for presentations. Slides are
// stored as an ordered JSON document alongside the aggregate fields.
type PresentationRepository interface {
	Insert(ctx context.Context, pres *Presentation) error
	GetByID(ctx context.Context, id string) (*Presentation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Presentation, error)
}
