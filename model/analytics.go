package model

import (
	"time"
)

// CompetencyLevel is the four-tier banding derived from a percentage score
type CompetencyLevel string

const (
	CompetencyBeginner     CompetencyLevel = "beginner"
	CompetencyIntermediate CompetencyLevel = "intermediate"
	CompetencyAdvanced     CompetencyLevel = "advanced"
	CompetencyExpert       CompetencyLevel = "expert"
)

// CompetencyLevelFor bands a percentage score: beginner <50, intermediate <70,
// advanced <90, expert >=90
func CompetencyLevelFor(percentage float64) CompetencyLevel {
	switch {
	case percentage < 50:
		return CompetencyBeginner
	case percentage < 70:
		return CompetencyIntermediate
	case percentage < 90:
		return CompetencyAdvanced
	default:
		return CompetencyExpert
	}
}

// OutcomeActivityType classifies the assessed activity behind a learning outcome
type OutcomeActivityType string

const (
	OutcomeActivityQuiz       OutcomeActivityType = "quiz"
	OutcomeActivityAssignment OutcomeActivityType = "assignment"
	OutcomeActivityProject    OutcomeActivityType = "project"
	OutcomeActivityExam       OutcomeActivityType = "exam"
)

// LearningOutcome records one assessed result for a user against a content
// item. Percentage and competency level are computed at write time and not
// re-derived later.
type LearningOutcome struct {
	ID                  uint                `gorm:"primaryKey" json:"id"`
	UserID              uint                `gorm:"not null;index" json:"user_id"`
	CourseID            uint                `gorm:"not null;index" json:"course_id"`
	ActivityDate        time.Time           `gorm:"not null;index" json:"activity_date"`
	ActivityType        OutcomeActivityType `gorm:"type:varchar(20);not null" json:"activity_type"`
	Score               float64             `gorm:"not null" json:"score"`
	MaxScore            float64             `gorm:"not null" json:"max_score"`
	Percentage          float64             `gorm:"not null" json:"percentage"`
	Topic               string              `gorm:"type:varchar(255)" json:"topic"`
	CurriculumTag       string              `gorm:"type:varchar(20)" json:"curriculum_tag,omitempty"`
	NERDCCompetencyCode string              `gorm:"type:varchar(50)" json:"nerdc_competency_code,omitempty"`
	CompetencyLevel     CompetencyLevel     `gorm:"type:varchar(20);not null" json:"competency_level"`
	CreatedAt           time.Time           `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for LearningOutcome
func (LearningOutcome) TableName() string {
	return "learning_outcomes"
}

// ContentEngagement is the per-day, per-content engagement bucket. One row
// exists per (content id, content type, UTC day); counters are only ever
// incremented and AvgRating is the running weighted mean of that day's
// ratings (zero while RatingCount is zero).
type ContentEngagement struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ContentID   uint        `gorm:"not null;uniqueIndex:idx_engagement_bucket" json:"content_id"`
	ContentType ContentType `gorm:"type:varchar(20);not null;uniqueIndex:idx_engagement_bucket" json:"content_type"`
	Date        time.Time   `gorm:"not null;uniqueIndex:idx_engagement_bucket" json:"date"` // truncated to UTC midnight
	Views       int64       `gorm:"default:0" json:"views"`
	Downloads   int64       `gorm:"default:0" json:"downloads"`
	Completions int64       `gorm:"default:0" json:"completions"`
	AvgRating   float64     `gorm:"default:0" json:"avg_rating"`
	RatingCount int64       `gorm:"default:0" json:"rating_count"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName specifies the table name for ContentEngagement
func (ContentEngagement) TableName() string {
	return "content_engagements"
}
