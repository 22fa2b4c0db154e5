package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseSource identifies the LMS a course was synced from
type CourseSource string

const (
	CourseSourceMoodle  CourseSource = "moodle"
	CourseSourceOpenedX CourseSource = "openedx"
)

// CourseLevel represents the education level a course targets
type CourseLevel string

const (
	CourseLevelSecondary  CourseLevel = "secondary"
	CourseLevelUniversity CourseLevel = "university"
)

// UnifiedCourse represents a course synced from an external LMS into the
// unified catalog, tagged against national curricula (NERDC/WAEC/NECO)
type UnifiedCourse struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	OriginalID     string         `gorm:"not null;index:idx_course_source_original" json:"original_id"` // ID in the source LMS
	Title          string         `gorm:"not null;index" json:"title"`
	ShortTitle     string         `gorm:"not null" json:"short_title"`
	Description    string         `gorm:"type:text" json:"description"`
	Source         CourseSource   `gorm:"type:varchar(20);not null;index:idx_course_source_original" json:"source"`
	Level          CourseLevel    `gorm:"type:varchar(20);not null" json:"level"`
	Format         string         `gorm:"type:varchar(20);default:'online'" json:"format"`
	Language       string         `gorm:"type:varchar(5);default:'en';index" json:"language"` // en, ha, yo, ig
	Approved       bool           `gorm:"default:true" json:"approved"`
	CreatorID      *uint          `json:"creator_id,omitempty"`
	NERDCTopicCode string         `gorm:"type:varchar(50);index" json:"nerdc_topic_code,omitempty"`
	CurriculumTags datatypes.JSON `json:"curriculum_tags,omitempty"` // subset of NERDC, WAEC, NECO
	Subjects       datatypes.JSON `json:"subjects,omitempty"`
	DownloadCount  int64          `gorm:"default:0" json:"download_count"`
	Category       string         `gorm:"type:varchar(100)" json:"category,omitempty"`
	StartDate      *time.Time     `json:"start_date,omitempty"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	Media          datatypes.JSON `json:"media,omitempty"`    // image_url, video_url
	Metadata       datatypes.JSON `json:"metadata,omitempty"` // difficulty_level, estimated_duration, prerequisites

	// Relationships
	Creator *User `gorm:"foreignKey:CreatorID" json:"-"`
}

// TableName specifies the table name for UnifiedCourse
func (UnifiedCourse) TableName() string {
	return "unified_courses"
}
