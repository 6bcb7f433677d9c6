package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the credential record keyed by email. Exactly one of PasswordHash
// or Provider is present: password users carry a bcrypt hash, externally
// authenticated users carry the provider tag plus the provider-assigned id.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	Name         string    `gorm:"column:name" json:"name,omitempty"`
	Provider     string    `gorm:"column:provider" json:"provider,omitempty"`
	ProviderID   string    `gorm:"column:provider_id" json:"provider_id,omitempty"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsDemo       bool      `gorm:"column:is_demo;not null;default:false" json:"is_demo"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }
