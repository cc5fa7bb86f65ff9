package models

import "time"

// Vote is the join entity enforcing at-most-one vote per (user, post) pair.
// The composite unique index is the correctness mechanism for concurrent
// toggles; inserts go through ON CONFLICT DO NOTHING.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_votes_user_post,priority:1" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:ux_votes_user_post,priority:2;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Vote) TableName() string {
	return "votes"
}
