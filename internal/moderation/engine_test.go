package moderation

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quckapp/moderation-service/internal/db"
	"github.com/quckapp/moderation-service/internal/models"
	"github.com/quckapp/moderation-service/internal/toxicity"
)

type stubClassifier struct {
	labels []toxicity.LabelScore
	err    error
}

func (s stubClassifier) Classify(context.Context, string) ([]toxicity.LabelScore, error) {
	return s.labels, s.err
}

var (
	cleanStub = stubClassifier{labels: []toxicity.LabelScore{{Label: "neutral", Score: 0.99}}}
	toxicStub = stubClassifier{labels: []toxicity.LabelScore{{Label: "toxic", Score: 0.85}}}
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err, "Failed to open database")
	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

func newTestEngine(t *testing.T, gdb *gorm.DB, classifier toxicity.Classifier) *Engine {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	filter, err := LoadProfanityFilter("")
	require.NoError(t, err)
	return NewEngine(gdb, toxicity.NewScorer(classifier, 0.7, log), filter, log)
}

func checkRequest(content string) *CheckRequest {
	return &CheckRequest{
		WorkspaceID: "ws-1",
		ContentID:   "content-1",
		ContentType: models.ContentTypeMessage,
		UserID:      "user-1",
		Content:     content,
	}
}

func createRule(t *testing.T, gdb *gorm.DB, rule models.ModerationRule) models.ModerationRule {
	t.Helper()
	require.NoError(t, gdb.Create(&rule).Error)
	return rule
}

func TestCheck_CleanContentAllows(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)

	result, err := engine.Check(context.Background(), checkRequest("a friendly message"))
	require.NoError(t, err)

	assert.Equal(t, models.ActionAllow, result.Action)
	assert.True(t, result.IsSafe)
	assert.Empty(t, result.Reason)
	assert.Empty(t, result.MatchedRules)
	assert.Empty(t, result.Categories)
}

func TestCheck_ProfanityOnlyFlags(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)

	result, err := engine.Check(context.Background(), checkRequest("this is complete bullshit"))
	require.NoError(t, err)

	assert.Equal(t, models.ActionFlag, result.Action)
	assert.Equal(t, "Contains profanity", result.Reason)
	assert.Equal(t, []string{"profanity"}, result.Categories)
	assert.False(t, result.IsSafe)
}

func TestCheck_MLOnlyBlocks(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, toxicStub)

	result, err := engine.Check(context.Background(), checkRequest("a clean looking message"))
	require.NoError(t, err)

	assert.Equal(t, models.ActionBlock, result.Action)
	assert.Equal(t, "ML detected toxic content (score: 0.85)", result.Reason)
	assert.InDelta(t, 0.85, result.ConfidenceScore, 1e-9)
	assert.Equal(t, []string{"toxic"}, result.Categories)
}

func TestCheck_RuleDeleteBeatsMLBlock(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, toxicStub)
	createRule(t, gdb, models.ModerationRule{
		Name:     "hard delete",
		RuleType: models.RuleTypeKeyword,
		Pattern:  "forbidden",
		Action:   models.ActionDelete,
		Severity: "critical",
		Enabled:  true,
	})

	result, err := engine.Check(context.Background(), checkRequest("this is forbidden"))
	require.NoError(t, err)

	assert.Equal(t, models.ActionDelete, result.Action)
	assert.Equal(t, "Matched rule: hard delete", result.Reason)
	assert.Equal(t, []string{"hard delete"}, result.MatchedRules)
	// Confidence still reflects the toxicity score even though the rule
	// decided the action.
	assert.InDelta(t, 0.85, result.ConfidenceScore, 1e-9)
	assert.Contains(t, result.Categories, "toxic")
}

func TestCheck_ActionSeverityDominatesRulePriority(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)
	createRule(t, gdb, models.ModerationRule{
		Name:     "high priority flag",
		RuleType: models.RuleTypeKeyword,
		Pattern:  "offer",
		Action:   models.ActionFlag,
		Severity: "low",
		Priority: 90,
		Enabled:  true,
	})
	createRule(t, gdb, models.ModerationRule{
		Name:     "low priority block",
		RuleType: models.RuleTypeKeyword,
		Pattern:  "offer",
		Action:   models.ActionBlock,
		Severity: "high",
		Priority: 10,
		Enabled:  true,
	})

	result, err := engine.Check(context.Background(), checkRequest("limited offer"))
	require.NoError(t, err)

	assert.Equal(t, models.ActionBlock, result.Action)
	assert.Equal(t, "Matched rule: low priority block", result.Reason)
	// Matched rules keep priority order even though the action came from
	// the lower-priority rule.
	assert.Equal(t, []string{"high priority flag", "low priority block"}, result.MatchedRules)
}

func TestCheck_DisabledAndForeignWorkspaceRulesIgnored(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)

	otherWS := "ws-other"
	createRule(t, gdb, models.ModerationRule{
		Name:     "disabled",
		RuleType: models.RuleTypeKeyword,
		Pattern:  "offer",
		Action:   models.ActionBlock,
		Enabled:  false,
	})
	createRule(t, gdb, models.ModerationRule{
		Name:        "other workspace",
		WorkspaceID: &otherWS,
		RuleType:    models.RuleTypeKeyword,
		Pattern:     "offer",
		Action:      models.ActionBlock,
		Enabled:     true,
	})

	result, err := engine.Check(context.Background(), checkRequest("limited offer"))
	require.NoError(t, err)
	assert.Equal(t, models.ActionAllow, result.Action)
	assert.Empty(t, result.MatchedRules)
}

func TestCheck_PersistsEventWithTruncatedContent(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)

	long := strings.Repeat("a", 1500)
	req := checkRequest(long)
	_, err := engine.Check(context.Background(), req)
	require.NoError(t, err)

	var event models.ModerationEvent
	require.NoError(t, gdb.First(&event, "content_id = ?", req.ContentID).Error)

	assert.Equal(t, req.WorkspaceID, event.WorkspaceID)
	assert.Equal(t, req.UserID, event.UserID)
	assert.Equal(t, models.ActionAllow, event.Action)
	assert.Len(t, event.OriginalContent, 1000)
	assert.Nil(t, event.ReviewedBy)
	assert.Nil(t, event.ReviewedAt)
}

func TestCheck_StoresMatchedRuleNames(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)
	createRule(t, gdb, models.ModerationRule{
		Name:     "spam words",
		RuleType: models.RuleTypeKeyword,
		Pattern:  "spam,scam",
		Action:   models.ActionFlag,
		Enabled:  true,
	})

	_, err := engine.Check(context.Background(), checkRequest("obvious scam"))
	require.NoError(t, err)

	var event models.ModerationEvent
	require.NoError(t, gdb.First(&event, "content_id = ?", "content-1").Error)

	var names []string
	require.NoError(t, json.Unmarshal(event.MatchedRules, &names))
	assert.Equal(t, []string{"spam words"}, names)
}

func TestCheckBulk_AggregatesCounts(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)
	createRule(t, gdb, models.ModerationRule{
		Name:     "blocker",
		RuleType: models.RuleTypeKeyword,
		Pattern:  "banned",
		Action:   models.ActionBlock,
		Enabled:  true,
	})

	items := []CheckRequest{
		{WorkspaceID: "ws-1", ContentID: "c1", ContentType: models.ContentTypeMessage, UserID: "u1", Content: "banned phrase"},
		{WorkspaceID: "ws-1", ContentID: "c2", ContentType: models.ContentTypeMessage, UserID: "u1", Content: "all good"},
		{WorkspaceID: "ws-1", ContentID: "c3", ContentType: models.ContentTypeMessage, UserID: "u2", Content: "also fine"},
	}

	bulk, err := engine.CheckBulk(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, 3, bulk.Total)
	assert.Equal(t, 1, bulk.Blocked)
	assert.Equal(t, 0, bulk.Flagged)
	assert.Equal(t, 2, bulk.Allowed)
	require.Len(t, bulk.Results, 3)
	assert.Equal(t, models.ActionBlock, bulk.Results[0].Action)

	// Each item produced its own event.
	var count int64
	require.NoError(t, gdb.Model(&models.ModerationEvent{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestEvents_FilterAndPagination(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)
	createRule(t, gdb, models.ModerationRule{
		Name:     "blocker",
		RuleType: models.RuleTypeKeyword,
		Pattern:  "banned",
		Action:   models.ActionBlock,
		Enabled:  true,
	})

	for _, content := range []string{"banned one", "fine", "banned two"} {
		req := checkRequest(content)
		req.ContentID = content
		_, err := engine.Check(context.Background(), req)
		require.NoError(t, err)
	}

	all, err := engine.Events(context.Background(), "ws-1", 50, 0, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	blocked := models.ActionBlock
	events, err := engine.Events(context.Background(), "ws-1", 50, 0, &blocked)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	page, err := engine.Events(context.Background(), "ws-1", 2, 2, nil)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	none, err := engine.Events(context.Background(), "ws-unknown", 50, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReview_UpdatesEventWithoutRerun(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)

	_, err := engine.Check(context.Background(), checkRequest("hello"))
	require.NoError(t, err)

	var event models.ModerationEvent
	require.NoError(t, gdb.First(&event).Error)

	reviewed, err := engine.Review(context.Background(), event.ID, models.ActionDelete, "reviewer-1")
	require.NoError(t, err)

	assert.Equal(t, models.ActionDelete, reviewed.Action)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "reviewer-1", *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	// Still exactly one event: review never re-runs the pipeline.
	var count int64
	require.NoError(t, gdb.Model(&models.ModerationEvent{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReview_UnknownEvent(t *testing.T) {
	gdb := newTestDB(t)
	engine := newTestEngine(t, gdb, cleanStub)

	_, err := engine.Review(context.Background(), "nope", models.ActionAllow, "reviewer-1")
	assert.ErrorIs(t, err, ErrEventNotFound)
}
