package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quckapp/moderation-service/internal/models"
)

// CreateRule creates a new moderation rule. A missing workspace_id makes the
// rule global.
func CreateRule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			WorkspaceID *string       `json:"workspace_id"`
			Name        string        `json:"name" binding:"required,max=100"`
			Description string        `json:"description" binding:"max=255"`
			RuleType    string        `json:"rule_type" binding:"required,oneof=keyword regex ml"`
			Pattern     string        `json:"pattern"`
			Action      models.Action `json:"action" binding:"required,oneof=allow flag block delete"`
			Severity    string        `json:"severity" binding:"omitempty,oneof=low medium high critical"`
			Priority    int           `json:"priority" binding:"gte=0,lte=100"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Severity == "" {
			input.Severity = "medium"
		}

		rule := models.ModerationRule{
			WorkspaceID: input.WorkspaceID,
			Name:        input.Name,
			Description: input.Description,
			RuleType:    input.RuleType,
			Pattern:     input.Pattern,
			Action:      input.Action,
			Severity:    input.Severity,
			Priority:    input.Priority,
			Enabled:     true,
		}

		if err := db.Create(&rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, rule)
	}
}

// ListRules returns rules ordered by priority descending, optionally scoped
// to a workspace (with or without global rules).
func ListRules(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.ModerationRule{}).Order("priority DESC")

		if workspaceID := c.Query("workspace_id"); workspaceID != "" {
			includeGlobal := true
			if v := c.Query("include_global"); v != "" {
				if parsed, err := strconv.ParseBool(v); err == nil {
					includeGlobal = parsed
				}
			}
			if includeGlobal {
				query = query.Where("workspace_id = ? OR workspace_id IS NULL", workspaceID)
			} else {
				query = query.Where("workspace_id = ?", workspaceID)
			}
		}

		var rules []models.ModerationRule
		if err := query.Find(&rules).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rules": rules})
	}
}

// GetRule returns a single rule by ID.
func GetRule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, ok := findRule(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, rule)
	}
}

// UpdateRule applies a partial update. Only the named fields below can be
// changed; absent fields keep their stored values.
func UpdateRule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name        *string        `json:"name" binding:"omitempty,max=100"`
			Description *string        `json:"description" binding:"omitempty,max=255"`
			Pattern     *string        `json:"pattern"`
			Action      *models.Action `json:"action" binding:"omitempty,oneof=allow flag block delete"`
			Severity    *string        `json:"severity" binding:"omitempty,oneof=low medium high critical"`
			Enabled     *bool          `json:"enabled"`
			Priority    *int           `json:"priority" binding:"omitempty,gte=0,lte=100"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rule, ok := findRule(c, db)
		if !ok {
			return
		}

		if input.Name != nil {
			rule.Name = *input.Name
		}
		if input.Description != nil {
			rule.Description = *input.Description
		}
		if input.Pattern != nil {
			rule.Pattern = *input.Pattern
		}
		if input.Action != nil {
			rule.Action = *input.Action
		}
		if input.Severity != nil {
			rule.Severity = *input.Severity
		}
		if input.Enabled != nil {
			rule.Enabled = *input.Enabled
		}
		if input.Priority != nil {
			rule.Priority = *input.Priority
		}

		if err := db.Save(rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rule)
	}
}

// DeleteRule removes a rule.
func DeleteRule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, ok := findRule(c, db)
		if !ok {
			return
		}
		if err := db.Delete(rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Rule deleted"})
	}
}

// ToggleRule flips a rule's enabled status.
func ToggleRule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, ok := findRule(c, db)
		if !ok {
			return
		}

		rule.Enabled = !rule.Enabled
		if err := db.Model(rule).Update("enabled", rule.Enabled).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		msg := "Rule disabled"
		if rule.Enabled {
			msg = "Rule enabled"
		}
		c.JSON(http.StatusOK, gin.H{"message": msg, "enabled": rule.Enabled})
	}
}

// findRule loads the rule addressed by the :id path param, writing the error
// response itself when the rule cannot be served.
func findRule(c *gin.Context, db *gorm.DB) (*models.ModerationRule, bool) {
	var rule models.ModerationRule
	if err := db.First(&rule, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return &rule, true
}
