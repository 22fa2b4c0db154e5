package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UploadedKind classifies a community-contributed content item
type UploadedKind string

const (
	UploadedKindLesson     UploadedKind = "lesson"
	UploadedKindQuiz       UploadedKind = "quiz"
	UploadedKindAssignment UploadedKind = "assignment"
	UploadedKindResource   UploadedKind = "resource"
)

// UploadedFormat is the media format of a contributed content file
type UploadedFormat string

const (
	UploadedFormatVideo        UploadedFormat = "video"
	UploadedFormatDocument     UploadedFormat = "document"
	UploadedFormatPresentation UploadedFormat = "presentation"
	UploadedFormatAudio        UploadedFormat = "audio"
	UploadedFormatInteractive  UploadedFormat = "interactive"
)

// UploadedContent is a teaching material contributed by a platform user, as
// opposed to the LMS-synced and OER catalogs. Items publish immediately;
// IsModerated flags items the community has voted down hard enough to need
// review.
type UploadedContent struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Title          string         `gorm:"not null;index" json:"title"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	Subject        string         `gorm:"type:varchar(30);not null;index" json:"subject"`
	GradeLevels    datatypes.JSON `json:"grade_levels"`
	Kind           UploadedKind   `gorm:"column:content_kind;type:varchar(20);not null;index" json:"content_type"`
	Format         UploadedFormat `gorm:"type:varchar(20);not null;index" json:"format"`
	Language       string         `gorm:"type:varchar(5);default:'en';index" json:"language"`
	CreatorID      uint           `gorm:"not null;index" json:"creator_id"`
	FileURL        string         `gorm:"not null" json:"file_url"`
	FileSize       int64          `gorm:"not null" json:"file_size"`
	ThumbnailURL   string         `json:"thumbnail_url,omitempty"`
	Tags           datatypes.JSON `json:"tags,omitempty"`
	IsDownloadable bool           `gorm:"default:true" json:"is_downloadable"`
	IsModerated    bool           `gorm:"default:false" json:"is_moderated"`
	Approved       bool           `gorm:"default:true" json:"approved"`
	Upvotes        int64          `gorm:"default:0" json:"upvotes"`
	Downvotes      int64          `gorm:"default:0" json:"downvotes"`
	Views          int64          `gorm:"default:0" json:"views"`
	DownloadCount  int64          `gorm:"default:0" json:"download_count"`

	// Relationships
	Creator *User `gorm:"foreignKey:CreatorID" json:"-"`
}

// TableName specifies the table name for UploadedContent
func (UploadedContent) TableName() string {
	return "uploaded_contents"
}
