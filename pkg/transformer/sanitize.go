package transformer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// maxSanitizePasses bounds how many decode layers SanitizeLabel peels off.
const maxSanitizePasses = 16

// SanitizeLabel strips markup from user-typed new-entry text and returns
// plain text. Entities are decoded after stripping, so "Fish &amp; Chips"
// and "Fish & Chips" both become "Fish & Chips".
//
// Decoding can surface markup that was hidden behind entities, so the
// policy is applied again until the output stops changing. Input that does
// not settle within maxSanitizePasses is returned in its escaped form.
func SanitizeLabel(raw string) string {
	current := strings.TrimSpace(raw)
	if current == "" {
		return ""
	}
	policy := labelSanitizer()
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(policy.Sanitize(current)))
		if next == current {
			return next
		}
		current = next
	}
	return strings.TrimSpace(policy.Sanitize(current))
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return labelPolicy
}
