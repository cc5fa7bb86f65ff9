package models

import "time"

// Project is a tenant's feedback board. At most one project per owner carries
// is_default; its slug is mirrored onto the owner's board_slug.
type Project struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OwnerID uint  `gorm:"not null;index" json:"owner_id"`
	Owner   *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Name string `gorm:"size:120;not null" json:"name"`
	Slug string `gorm:"size:50;not null;uniqueIndex" json:"slug"`

	CompanyName string `gorm:"size:120" json:"company_name"`
	CompanyURL  string `gorm:"size:300" json:"company_url"`
	// CompanyURLNormalized is the lowercased host+path with scheme and "www."
	// stripped, kept alongside the raw URL so board resolution can match on it.
	CompanyURLNormalized string `gorm:"size:300;index" json:"-"`

	IsDefault bool `gorm:"default:false;index" json:"is_default"`

	// MatchRank is not persisted; populated by the ranked board-resolution query.
	MatchRank int `gorm:"->;-:migration" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Project) TableName() string {
	return "projects"
}
