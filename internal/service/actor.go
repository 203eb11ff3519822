package service

import "github.com/google/uuid"

// Actor identifies the authenticated caller of a service operation. It is
// built by the auth middleware from JWT claims; services trust it as given
// and perform no credential checks of their own.
type Actor struct {
	ID   uuid.UUID
	Role string
	Area string
}
