package domain

import "time"

// Identity is an authenticated principal issued by the external provider.
// Read-only to this service; the id is the sole join key to Profile.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// RegistrationFields are the optional attributes collected by a signup form.
type RegistrationFields struct {
	Nome           *string
	DataNascimento *time.Time
}

// PendingRegistration holds registration fields captured before the identity
// was confirmed, keyed in the cache by lower-cased email. DataNascimento is
// kept as an ISO date string until consumed.
type PendingRegistration struct {
	Email          string  `json:"email"`
	Nome           *string `json:"nome,omitempty"`
	DataNascimento *string `json:"data_nascimento,omitempty"`
}
