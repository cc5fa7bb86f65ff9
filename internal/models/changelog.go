package models

import (
	"time"

	"gorm.io/gorm"
)

// ChangelogEntry is an admin-authored release note attached to a project.
// Entries without PublishedAt are drafts and never shown publicly.
type ChangelogEntry struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProjectID uint     `gorm:"not null;index" json:"project_id"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	Title string `gorm:"size:150;not null" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`

	PublishedAt *time.Time     `gorm:"index" json:"published_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (ChangelogEntry) TableName() string {
	return "changelog_entries"
}
