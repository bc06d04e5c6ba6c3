package sanitize

import (
	"regexp"
)

// Known jailbreak and instruction-override phrasing. The detector is a binary
// gate, not a classifier: the first match rejects the request. False positives
// are accepted as the cost of a conservative gate.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+previous\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+everything`),
	regexp.MustCompile(`(?i)system\s*:\s*you\s+are`),
	regexp.MustCompile(`(?i)\[INST\]`),
	regexp.MustCompile(`(?i)<\|system\|>`),
	regexp.MustCompile(`(?i)assistant\s*:\s*i\s+will`),
	regexp.MustCompile(`(?i)override\s+your\s+instructions`),
	regexp.MustCompile(`(?i)jailbreak`),
	regexp.MustCompile(`(?i)pretend\s+to\s+be`),
	regexp.MustCompile(`(?i)role\s*:\s*system`),
}

// Detector pattern-matches free text against the fixed signature bank.
type Detector struct {
	patterns []*regexp.Regexp
}

func NewDetector() *Detector {
	return &Detector{patterns: injectionPatterns}
}

// LooksLikeInjection returns true on the first signature match.
func (d *Detector) LooksLikeInjection(text string) bool {
	for _, pattern := range d.patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
