package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Content bounds for admin-entered override text, in characters.
const (
	OverrideContentMin = 10
	OverrideContentMax = 50000
)

// PersonContentOverride is admin-edited profile text keyed by subject slug.
// It takes precedence over file-derived text and never carries images.
type PersonContentOverride struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PersonSlug string    `gorm:"uniqueIndex;not null;column:person_slug" json:"person_slug"`
	PersonName string    `gorm:"not null;column:person_name" json:"person_name"`
	Content    string    `gorm:"not null;column:content" json:"content"`
	UpdatedBy  string    `gorm:"column:updated_by" json:"updated_by"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (PersonContentOverride) TableName() string { return "person_content_override" }

// MigrationRun is the audit row written after each bulk file-to-override
// migration. Errors holds the per-item failures as JSON.
type MigrationRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Total      int            `gorm:"not null" json:"total"`
	Successful int            `gorm:"not null" json:"successful"`
	Skipped    int            `gorm:"not null" json:"skipped"`
	Failed     int            `gorm:"not null" json:"failed"`
	Errors     datatypes.JSON `gorm:"column:errors" json:"errors"`
	RanBy      string         `gorm:"column:ran_by" json:"ran_by"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (MigrationRun) TableName() string { return "migration_run" }
