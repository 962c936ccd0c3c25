package scanner

import (
	"regexp"
	"strings"
)

// CreditRule classifies one paragraph as a photo credit.
type CreditRule struct {
	Name  string
	Match func(text string) bool
}

var creditPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfoto:`),
	regexp.MustCompile(`(?i)\bfoto no\b`),
	regexp.MustCompile(`(?i)\battēls:`),
	regexp.MustCompile(`(?i)\bfotogrāfija:`),
	regexp.MustCompile(`(?i)privātā arhīva`),
	regexp.MustCompile(`(?i)personīgā arhīva`),
	regexp.MustCompile(`(?i)autora arhīvs`),
	regexp.MustCompile(`(?i)no personīgā`),
}

// CreditRules is the ordered table the extractor walks for every paragraph.
// A paragraph matching any rule is removed from the body and collected as a
// photo credit.
var CreditRules = []CreditRule{
	{
		Name: "credit_phrase",
		Match: func(text string) bool {
			for _, p := range creditPhrasePatterns {
				if p.MatchString(text) {
					return true
				}
			}
			return false
		},
	},
	{
		Name: "short_mention",
		Match: func(text string) bool {
			if len([]rune(text)) >= 100 {
				return false
			}
			lower := strings.ToLower(text)
			return strings.Contains(lower, "foto") ||
				strings.Contains(lower, "attēls") ||
				strings.Contains(lower, "arhīv")
		},
	},
}

// IsCreditParagraph reports whether any credit rule matches.
func IsCreditParagraph(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, rule := range CreditRules {
		if rule.Match(trimmed) {
			return true
		}
	}
	return false
}

// HeadingRule promotes one recurring boilerplate paragraph to a heading.
// Once-only rules stop matching after their first hit within a document.
type HeadingRule struct {
	Name  string
	Level int
	Once  bool
	Match func(text string) bool
}

// The interview question every published profile repeats verbatim.
const recurringQuestion = "Kā tu nonāci līdz savam aicinājumam?"

var numberedSectionPattern = regexp.MustCompile(`^\d+\.\s*$`)

// HeadingRules is the ordered promotion table. Rules are evaluated per
// paragraph in table order; the first match wins.
var HeadingRules = []HeadingRule{
	{
		Name:  "recurring_question",
		Level: 2,
		Once:  true,
		Match: func(text string) bool {
			return strings.Contains(text, recurringQuestion)
		},
	},
	{
		Name:  "narrator_line",
		Level: 3,
		Once:  true,
		Match: func(text string) bool {
			return strings.HasPrefix(text, "Stāsta") && len([]rune(text)) < 200
		},
	},
	{
		Name:  "numbered_section",
		Level: 4,
		Once:  false,
		Match: func(text string) bool {
			return numberedSectionPattern.MatchString(text)
		},
	},
}
