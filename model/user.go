package model

import (
	"time"

	"gorm.io/gorm"
)

// UserRole distinguishes platform users
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// User represents a registered user. Account management (registration, login,
// password reset) lives behind the auth boundary; this model exists for
// foreign keys, seeding and the session-user lookup done by the auth
// middleware.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         UserRole       `gorm:"type:varchar(20);default:'student'" json:"role"`
	Language     string         `gorm:"type:varchar(5);default:'en'" json:"language"` // en, ha, yo, ig
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`

	// Relationships
	Activities []OfflineActivity `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Outcomes   []LearningOutcome `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
