package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModerationEvent is the audit record of one evaluated content item. It is
// created exactly once per moderation call and mutated only by the review
// endpoint.
type ModerationEvent struct {
	ID          string      `gorm:"type:char(36);primaryKey" json:"id"`
	WorkspaceID string      `gorm:"type:char(36);index;not null" json:"workspace_id"`
	ContentID   string      `gorm:"type:char(36);index;not null" json:"content_id"`
	ContentType ContentType `gorm:"size:20;not null" json:"content_type"`
	UserID      string      `gorm:"type:char(36);index;not null" json:"user_id"`
	// OriginalContent is truncated to 1000 characters for storage and is
	// not exposed through the events API.
	OriginalContent string         `gorm:"type:text;not null" json:"-"`
	Action          Action         `gorm:"size:20;not null" json:"action"`
	Reason          string         `gorm:"size:255" json:"reason,omitempty"`
	ConfidenceScore float64        `json:"confidence_score"`
	MatchedRules    datatypes.JSON `gorm:"type:json" json:"matched_rules,omitempty"`
	ReviewedBy      *string        `gorm:"type:char(36)" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
}

func (e *ModerationEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
