package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OERType represents the media type of an open educational resource
type OERType string

const (
	OERTypeVideo OERType = "video"
	OERTypeText  OERType = "text"
	OERTypeQuiz  OERType = "quiz"
	OERTypeAudio OERType = "audio"
)

// OERResource represents an open educational resource from an external
// provider, optionally mirrored into object storage for offline download
type OERResource struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Title          string         `gorm:"not null;index" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Provider       string         `gorm:"not null;index" json:"provider"`
	URL            string         `gorm:"not null" json:"url"`
	Type           OERType        `gorm:"type:varchar(10);not null;index" json:"type"`
	Language       string         `gorm:"type:varchar(5);default:'en';index" json:"language"`
	License        string         `gorm:"not null" json:"license"`
	Subjects       datatypes.JSON `json:"subjects,omitempty"`
	CurriculumTags datatypes.JSON `json:"curriculum_tags,omitempty"`
	NERDCTopicCode string         `gorm:"type:varchar(50);index" json:"nerdc_topic_code,omitempty"`
	DownloadCount  int64          `gorm:"default:0" json:"download_count"`
	FileKey        string         `gorm:"type:varchar(255)" json:"-"` // object storage key for mirrored files
	Metadata       datatypes.JSON `json:"metadata,omitempty"`         // file_size, duration, author
}

// TableName specifies the table name for OERResource
func (OERResource) TableName() string {
	return "oer_resources"
}
