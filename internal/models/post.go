package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is a feedback item's workflow state.
type PostStatus string

const (
	// PostStatusOpen is the intake state; open posts are not on the roadmap.
	PostStatusOpen PostStatus = "Open"
	// PostStatusPlanned through PostStatusComplete are the roadmap columns.
	PostStatusPlanned    PostStatus = "Planned"
	PostStatusInProgress PostStatus = "In Progress"
	PostStatusComplete   PostStatus = "Complete"
)

// RoadmapStatuses are the statuses that appear as kanban columns. Open posts
// must be promoted before they show up here.
var RoadmapStatuses = []PostStatus{PostStatusPlanned, PostStatusInProgress, PostStatusComplete}

// IsRoadmapStatus reports whether s is a valid kanban drop target.
func IsRoadmapStatus(s PostStatus) bool {
	switch s {
	case PostStatusPlanned, PostStatusInProgress, PostStatusComplete:
		return true
	}
	return false
}

// Post categories, mapped from widget submission types.
const (
	PostCategoryFeature     = "feature"
	PostCategoryBug         = "bug"
	PostCategoryImprovement = "improvement"
)

// Post represents a feedback item on a board.
type Post struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:100;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Category string     `gorm:"type:varchar(20);not null;default:'feature';index" json:"category"`
	Status   PostStatus `gorm:"type:varchar(20);not null;default:'Open';index" json:"status"`

	// BoardOwnerID is the tenant the post belongs to; ownership checks compare
	// against it rather than the author.
	BoardOwnerID uint     `gorm:"not null;index" json:"board_owner_id"`
	ProjectID    *uint    `gorm:"index" json:"project_id,omitempty"`
	Project      *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	// AuthorID is zero for anonymous widget submissions.
	AuthorID uint  `gorm:"index" json:"author_id"`
	Author   *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// VotesCount is not persisted; computed at query time
	VotesCount int `gorm:"->" json:"votes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// HasVoted indicates whether the requesting user voted on this post (computed)
	HasVoted bool `gorm:"->" json:"has_voted"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NormalizeCategory maps a widget submission type onto the fixed category set,
// defaulting unknown values to "feature".
func NormalizeCategory(raw string) string {
	switch raw {
	case PostCategoryFeature, PostCategoryBug, PostCategoryImprovement:
		return raw
	}
	return PostCategoryFeature
}
