package model

import "time"

// VoteKind is an up or down vote on contributed content
type VoteKind string

const (
	VoteUp   VoteKind = "up"
	VoteDown VoteKind = "down"
)

// Valid reports whether the value is a known vote kind
func (v VoteKind) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// ContentVote tracks one user's current vote on one contributed content item.
// A user has at most one row per item; casting the same vote again deletes
// the row, casting the opposite vote flips it.
type ContentVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ContentID uint      `gorm:"not null;uniqueIndex:idx_vote_once" json:"content_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_vote_once" json:"user_id"`
	Vote      VoteKind  `gorm:"type:varchar(4);not null" json:"vote"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for ContentVote
func (ContentVote) TableName() string {
	return "content_votes"
}
