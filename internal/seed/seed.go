package seed

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/quckapp/moderation-service/internal/models"
)

// DefaultRules ensures a baseline set of global moderation rules exists so a
// fresh deployment moderates something sensible before operators configure
// their own rules. Idempotent: rules are matched by name.
func DefaultRules(gdb *gorm.DB, log *logrus.Logger) error {
	rules := []models.ModerationRule{
		{
			Name:        "Phishing links",
			Description: "Common credential-phishing bait phrases",
			RuleType:    models.RuleTypeKeyword,
			Pattern:     "verify your account,account suspended,click here to claim,confirm your password",
			Action:      models.ActionBlock,
			Severity:    "critical",
			Priority:    90,
			Enabled:     true,
		},
		{
			Name:        "Spam invites",
			Description: "Unsolicited join/invite spam",
			RuleType:    models.RuleTypeKeyword,
			Pattern:     "free nitro,join my server,earn money fast,crypto giveaway",
			Action:      models.ActionFlag,
			Severity:    "medium",
			Priority:    50,
			Enabled:     true,
		},
		{
			Name:        "Repeated characters",
			Description: "Flood-style messages with long character runs",
			RuleType:    models.RuleTypeRegex,
			Pattern:     `(.)\1{9,}`,
			Action:      models.ActionFlag,
			Severity:    "low",
			Priority:    10,
			Enabled:     true,
		},
	}

	created := 0
	for i := range rules {
		rule := rules[i]
		result := gdb.Where("name = ? AND workspace_id IS NULL", rule.Name).FirstOrCreate(&rule)
		if result.Error != nil {
			return result.Error
		}
		created += int(result.RowsAffected)
	}

	log.WithFields(logrus.Fields{"created": created, "total": len(rules)}).Info("Default rules seeded")
	return nil
}
