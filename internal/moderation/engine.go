// Package moderation implements the content moderation decision pipeline:
// rule matching, profanity check and toxicity scoring merged into one final
// action, with every decision persisted as an audit event.
package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/quckapp/moderation-service/internal/metrics"
	"github.com/quckapp/moderation-service/internal/models"
	"github.com/quckapp/moderation-service/internal/toxicity"
)

// ErrEventNotFound is returned by Review for unknown event IDs.
var ErrEventNotFound = errors.New("moderation event not found")

// storedContentRunes bounds the audit copy of the evaluated content.
const storedContentRunes = 1000

// CheckRequest is one content item to moderate.
type CheckRequest struct {
	WorkspaceID string             `json:"workspace_id" binding:"required"`
	ContentID   string             `json:"content_id" binding:"required"`
	ContentType models.ContentType `json:"content_type" binding:"required"`
	UserID      string             `json:"user_id" binding:"required"`
	Content     string             `json:"content" binding:"required"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
}

// Result is the resolved moderation decision for one content item.
type Result struct {
	ContentID       string        `json:"content_id"`
	Action          models.Action `json:"action"`
	Reason          string        `json:"reason,omitempty"`
	ConfidenceScore float64       `json:"confidence_score"`
	MatchedRules    []string      `json:"matched_rules"`
	Categories      []string      `json:"categories"`
	IsSafe          bool          `json:"is_safe"`
}

// BulkResult aggregates decisions for a batch of items.
type BulkResult struct {
	Results []*Result `json:"results"`
	Total   int       `json:"total"`
	Blocked int       `json:"blocked"`
	Flagged int       `json:"flagged"`
	Allowed int       `json:"allowed"`
}

// Engine orchestrates the moderation pipeline. A single Engine is shared by
// all requests; it holds no per-call state.
type Engine struct {
	db     *gorm.DB
	scorer *toxicity.Scorer
	filter *ProfanityFilter
	log    *logrus.Logger
}

func NewEngine(db *gorm.DB, scorer *toxicity.Scorer, filter *ProfanityFilter, log *logrus.Logger) *Engine {
	return &Engine{db: db, scorer: scorer, filter: filter, log: log}
}

// Check runs the full pipeline on one content item: workspace and global
// rules, then the profanity list, then the toxicity scorer. Each step may
// only raise the action, never lower it. All steps run unconditionally so
// the audit record is complete, and the event write must succeed before a
// result is returned.
func (e *Engine) Check(ctx context.Context, req *CheckRequest) (*Result, error) {
	action := models.ActionAllow
	reason := ""
	matched := []string{}
	categories := []string{}

	rules, err := e.applicableRules(ctx, req.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("load moderation rules: %w", err)
	}

	for i := range rules {
		rule := &rules[i]
		if !RuleMatches(rule, req.Content) {
			continue
		}
		matched = append(matched, rule.Name)
		// Action severity dominates rule priority: a low-priority rule
		// with a harsher action wins over earlier matches.
		if rule.Action.Exceeds(action) {
			action = rule.Action
			reason = "Matched rule: " + rule.Name
		}
	}

	if e.filter.ContainsProfanity(req.Content) {
		categories = append(categories, "profanity")
		if action == models.ActionAllow {
			action = models.ActionFlag
			reason = "Contains profanity"
		}
	}

	ml := e.scorer.Analyze(ctx, req.Content)
	// The stored confidence is always the toxicity score, regardless of
	// which check decided the action.
	confidence := ml.Score
	if ml.IsToxic {
		categories = append(categories, "toxic")
		if models.ActionBlock.Exceeds(action) {
			action = models.ActionBlock
			reason = fmt.Sprintf("ML detected toxic content (score: %.2f)", ml.Score)
		}
	}

	event := &models.ModerationEvent{
		WorkspaceID:     req.WorkspaceID,
		ContentID:       req.ContentID,
		ContentType:     req.ContentType,
		UserID:          req.UserID,
		OriginalContent: toxicity.Truncate(req.Content, storedContentRunes),
		Action:          action,
		Reason:          reason,
		ConfidenceScore: confidence,
	}
	if len(matched) > 0 {
		b, err := json.Marshal(matched)
		if err != nil {
			return nil, fmt.Errorf("encode matched rules: %w", err)
		}
		event.MatchedRules = datatypes.JSON(b)
	}

	if err := e.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, fmt.Errorf("store moderation event: %w", err)
	}

	metrics.ChecksTotal.WithLabelValues(string(action)).Inc()
	e.log.WithFields(logrus.Fields{
		"content_id": req.ContentID,
		"workspace":  req.WorkspaceID,
		"action":     action,
		"confidence": confidence,
	}).Info("Content moderated")

	return &Result{
		ContentID:       req.ContentID,
		Action:          action,
		Reason:          reason,
		ConfidenceScore: confidence,
		MatchedRules:    matched,
		Categories:      categories,
		IsSafe:          action == models.ActionAllow,
	}, nil
}

// CheckBulk evaluates items independently, each with its own event
// transaction, and aggregates allow/flag/block counts.
func (e *Engine) CheckBulk(ctx context.Context, items []CheckRequest) (*BulkResult, error) {
	bulk := &BulkResult{Results: make([]*Result, 0, len(items))}

	for i := range items {
		result, err := e.Check(ctx, &items[i])
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i, items[i].ContentID, err)
		}
		bulk.Results = append(bulk.Results, result)

		switch result.Action {
		case models.ActionBlock:
			bulk.Blocked++
		case models.ActionFlag:
			bulk.Flagged++
		default:
			bulk.Allowed++
		}
	}

	bulk.Total = len(bulk.Results)
	return bulk, nil
}

// Events lists moderation events for a workspace, newest first. action
// filters to a single resolved action when non-nil.
func (e *Engine) Events(ctx context.Context, workspaceID string, limit, offset int, action *models.Action) ([]models.ModerationEvent, error) {
	query := e.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC")

	if action != nil {
		query = query.Where("action = ?", *action)
	}

	var events []models.ModerationEvent
	if err := query.Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list moderation events: %w", err)
	}
	return events, nil
}

// Review records a human reviewer's verdict on an existing event. It updates
// the stored action directly without re-running the pipeline.
func (e *Engine) Review(ctx context.Context, eventID string, action models.Action, reviewerID string) (*models.ModerationEvent, error) {
	var event models.ModerationEvent
	if err := e.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load moderation event: %w", err)
	}

	now := time.Now().UTC()
	event.Action = action
	event.ReviewedBy = &reviewerID
	event.ReviewedAt = &now

	if err := e.db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, fmt.Errorf("update moderation event: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"event_id": eventID,
		"reviewer": reviewerID,
		"action":   action,
	}).Info("Moderation event reviewed")

	return &event, nil
}

// applicableRules returns enabled rules scoped to the workspace or global,
// ordered by priority descending.
func (e *Engine) applicableRules(ctx context.Context, workspaceID string) ([]models.ModerationRule, error) {
	var rules []models.ModerationRule
	err := e.db.WithContext(ctx).
		Where("enabled = ?", true).
		Where("workspace_id = ? OR workspace_id IS NULL", workspaceID).
		Order("priority DESC").
		Find(&rules).Error
	return rules, err
}
