package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType represents the kind of learning event recorded offline
type ActivityType string

const (
	ActivityTypeQuizAttempt ActivityType = "quiz_attempt"
	ActivityTypeContentView ActivityType = "content_view"
	ActivityTypeDownload    ActivityType = "download"
)

// SyncStatus tracks the server-side processing state of an offline activity
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// QuizAnswer is one answer inside a quiz_attempt activity payload
type QuizAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

// ActivityDetails is the kind-specific payload of an offline activity,
// stored as a JSONB column
type ActivityDetails struct {
	QuizAnswers       []QuizAnswer `json:"quiz_answers,omitempty"`
	ViewDuration      int          `json:"view_duration,omitempty"` // seconds
	DownloadCompleted bool         `json:"download_completed,omitempty"`
}

// OfflineActivity is a client-recorded learning event awaiting server-side
// application. Records are created as pending, transition exactly once to
// synced or failed, and are never deleted by the sync subsystem.
type OfflineActivity struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index:idx_activity_user_status" json:"user_id"`
	ActivityType ActivityType   `gorm:"type:varchar(20);not null" json:"activity_type"`
	ContentID    uint           `gorm:"not null;index:idx_activity_content" json:"content_id"`
	ContentType  ContentType    `gorm:"type:varchar(20);not null;index:idx_activity_content" json:"content_type"`
	Details      datatypes.JSON `json:"details,omitempty"`
	SyncStatus   SyncStatus     `gorm:"type:varchar(10);default:'pending';index:idx_activity_user_status" json:"sync_status"`
	SyncedAt     *time.Time     `json:"synced_at,omitempty"` // set exactly when SyncStatus becomes synced
	VersionHash  string         `gorm:"type:varchar(64)" json:"version_hash,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for OfflineActivity
func (OfflineActivity) TableName() string {
	return "offline_activities"
}
