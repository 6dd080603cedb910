package enrich

import (
	"strings"

	"SignalScanner/internal/config"
)

// TeamOther is the fallback classification for unmatched job titles.
const TeamOther = "Other"

// TeamClassifier maps job titles to teams via ordered keyword rules.
type TeamClassifier struct {
	rules []config.KeywordRule
}

// NewTeamClassifier builds a classifier from config rules.
func NewTeamClassifier(rules []config.KeywordRule) *TeamClassifier {
	return &TeamClassifier{rules: rules}
}

// Classify returns the first rule label whose keywords match the title,
// or "Other".
func (c *TeamClassifier) Classify(title string) string {
	if label, ok := firstMatch(c.rules, title); ok {
		return label
	}
	return TeamOther
}

// firstMatch evaluates ordered (label, keywords) rules against text,
// case-insensitively; first match wins.
func firstMatch(rules []config.KeywordRule, text string) (string, bool) {
	t := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(t, strings.ToLower(kw)) {
				return rule.Label, true
			}
		}
	}
	return "", false
}
