package domain

import "time"

// DefaultRole is assigned to every profile on first creation and is never
// escalated by this service.
const DefaultRole = "user"

// Profile is the local record of application attributes for an authenticated
// identity. The primary key is the identity id issued by the provider.
type Profile struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"not null;index" json:"email"`
	Nome           *string    `json:"nome"`
	DataNascimento *time.Time `gorm:"type:date" json:"data_nascimento"`
	Role           string     `gorm:"not null;default:'user'" json:"role"`
	LastActive     *time.Time `json:"last_active"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }

// ProfileFields carries the values a single reconciliation wants written.
// WithDetails marks nome/data_nascimento for writing even when nil; when it
// is false an existing row keeps whatever optional values it already has.
// Role is written on insert only, never on update.
type ProfileFields struct {
	Email          string
	Nome           *string
	DataNascimento *time.Time
	WithDetails    bool
}
