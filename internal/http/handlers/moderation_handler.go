package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quckapp/moderation-service/internal/models"
	"github.com/quckapp/moderation-service/internal/moderation"
)

// CheckContent runs the moderation pipeline on one content item.
func CheckContent(engine *moderation.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req moderation.CheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.ContentType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content_type"})
			return
		}

		result, err := engine.Check(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// CheckContentBulk runs the pipeline on a batch of items and aggregates
// allow/flag/block counts.
func CheckContentBulk(engine *moderation.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Items []moderation.CheckRequest `json:"items" binding:"required,min=1,dive"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		for i := range req.Items {
			if !req.Items[i].ContentType.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content_type in items"})
				return
			}
		}

		result, err := engine.CheckBulk(c.Request.Context(), req.Items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ListEvents returns a workspace's moderation events, newest first.
func ListEvents(engine *moderation.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("id")

		limit := 50
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
				limit = parsed
			}
		}

		offset := 0
		if v := c.Query("offset"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
				offset = parsed
			}
		}

		var actionFilter *models.Action
		if v := c.Query("action"); v != "" {
			action := models.Action(v)
			if !action.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action filter"})
				return
			}
			actionFilter = &action
		}

		events, err := engine.Events(c.Request.Context(), workspaceID, limit, offset, actionFilter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

// ReviewEvent records a human reviewer's verdict on an existing event.
func ReviewEvent(engine *moderation.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Param("id")

		action := models.Action(c.Query("action"))
		if !action.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
			return
		}
		reviewerID := c.Query("reviewer_id")
		if reviewerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reviewer_id is required"})
			return
		}

		event, err := engine.Review(c.Request.Context(), eventID, action, reviewerID)
		if err != nil {
			if errors.Is(err, moderation.ErrEventNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Event reviewed", "new_action": event.Action})
	}
}
