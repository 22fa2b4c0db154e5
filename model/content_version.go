package model

import (
	"time"

	"gorm.io/datatypes"
)

// ContentVersion is one entry in the append-only version ledger of a content
// item. Version numbers start at 1 and increase by one per (content id,
// content type) pair; rows are immutable once created.
type ContentVersion struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ContentID     uint           `gorm:"not null;index:idx_version_content" json:"content_id"`
	ContentType   ContentType    `gorm:"type:varchar(20);not null;index:idx_version_content" json:"content_type"`
	VersionHash   string         `gorm:"type:varchar(64);not null" json:"version_hash"`
	VersionNumber int            `gorm:"not null" json:"version_number"`
	Changes       datatypes.JSON `json:"changes,omitempty"` // human-readable change descriptions
	CreatedBy     *uint          `json:"created_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TableName specifies the table name for ContentVersion
func (ContentVersion) TableName() string {
	return "content_versions"
}
