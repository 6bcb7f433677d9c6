package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project is the full canvas record for one user. Saves are whole-record
// upserts: callers supply the complete item each time, and concurrent writers
// can clobber each other's fields (documented trade-off, not enforced away).
//
// UserID is not a foreign key into user: ownership is by convention only.
type Project struct {
	ID     string    `gorm:"primaryKey;column:project_id" json:"projectId"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_project_user_id" json:"userId"`

	Title string `gorm:"not null" json:"title"`
	// EditedAt is the client-reported edit timestamp, stored verbatim.
	EditedAt string         `gorm:"column:edited_at" json:"editedAt"`
	Blocks   datatypes.JSON `gorm:"column:blocks;type:jsonb" json:"blocks"`

	// AssistantID links the externally provisioned LLM assistant, when one
	// was created alongside the project.
	AssistantID string         `gorm:"column:assistant_id" json:"assistantId,omitempty"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	DateCreated time.Time `gorm:"column:date_created;not null" json:"dateCreated"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

func (Project) TableName() string { return "project" }
