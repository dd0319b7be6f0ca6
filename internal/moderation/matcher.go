package moderation

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/quckapp/moderation-service/internal/models"
)

// RuleMatches reports whether content violates rule. Keyword rules match when
// any comma-separated keyword is a case-insensitive substring of the content.
// Regex rules match with a case-insensitive search; a malformed pattern is
// logged and treated as non-matching. ml rules are reserved and never match.
func RuleMatches(rule *models.ModerationRule, content string) bool {
	if rule.Pattern == "" {
		return false
	}

	switch rule.RuleType {
	case models.RuleTypeKeyword:
		lower := strings.ToLower(content)
		for _, kw := range strings.Split(rule.Pattern, ",") {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(lower, kw) {
				return true
			}
		}
		return false

	case models.RuleTypeRegex:
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"rule_id": rule.ID,
				"rule":    rule.Name,
			}).Warn("Invalid regex pattern")
			return false
		}
		return re.MatchString(content)
	}

	return false
}

// MatchRules returns the subset of rules that match content, preserving the
// order of rules.
func MatchRules(rules []models.ModerationRule, content string) []models.ModerationRule {
	var matched []models.ModerationRule
	for i := range rules {
		if RuleMatches(&rules[i], content) {
			matched = append(matched, rules[i])
		}
	}
	return matched
}
