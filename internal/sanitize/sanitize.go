package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	controlChars   = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Sanitizer normalizes user-authored text before it is forwarded to a paid
// model API or stored. Active-content markup is stripped outright; only a
// small allow-list of inline formatting survives.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "u", "code", "pre", "blockquote", "ul", "ol", "li")
	p.AllowAttrs("class").Globally()
	p.SkipElementsContent("script", "style", "object", "embed", "svg")
	return &Sanitizer{policy: p}
}

// Clean strips disallowed markup and control characters and collapses
// whitespace runs to single spaces. Clean is idempotent:
// Clean(Clean(s)) == Clean(s).
func (s *Sanitizer) Clean(text string) string {
	cleaned := controlChars.ReplaceAllString(text, "")
	cleaned = s.policy.Sanitize(cleaned)
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
