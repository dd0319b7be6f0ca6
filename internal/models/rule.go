package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationRule is an operator-configured pattern mapped to a recommended
// action. A nil WorkspaceID means the rule is global and applies to every
// workspace.
type ModerationRule struct {
	ID          string  `gorm:"type:char(36);primaryKey" json:"id"`
	WorkspaceID *string `gorm:"type:char(36);index" json:"workspace_id"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"size:255" json:"description,omitempty"`
	RuleType    string  `gorm:"size:50;not null" json:"rule_type"`
	// Pattern is a comma-separated keyword list for keyword rules or a
	// single regular expression for regex rules. Empty for ml rules.
	Pattern   string    `gorm:"type:text" json:"pattern,omitempty"`
	Action    Action    `gorm:"size:20;not null" json:"action"`
	Severity  string    `gorm:"size:20;not null" json:"severity"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
	Priority  int       `gorm:"not null;index" json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *ModerationRule) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
