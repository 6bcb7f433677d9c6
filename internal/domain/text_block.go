package domain

import "time"

// TextBlock is one ordered block of a project's canvas, keyed by
// (project_id, block_id). Order values need not be contiguous or unique;
// readers sort ascending by order with ties broken by insertion time.
// A block has no referential tie to its project row (convention only).
type TextBlock struct {
	ProjectID string `gorm:"primaryKey;column:project_id" json:"projectId"`
	BlockID   string `gorm:"primaryKey;column:block_id" json:"id"`

	Content string `gorm:"type:text;not null" json:"content"`
	// "order" is reserved in SQL; keep the column unambiguous.
	Order int `gorm:"column:block_order;not null" json:"order"`

	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (TextBlock) TableName() string { return "text_block" }
