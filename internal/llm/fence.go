package llm

import (
	"strings"
	"unicode"
)

const fence = "```"

// TrimFences strips surrounding whitespace and at most one pair of markdown
// code fences. A language tag on the opening fence line ("```json") is
// dropped with it. Text without a matching pair is returned trimmed.
func TrimFences(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2*len(fence) || !strings.HasPrefix(s, fence) || !strings.HasSuffix(s, fence) {
		return s
	}
	inner := s[len(fence) : len(s)-len(fence)]
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && isLangTag(inner[:nl]) {
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}

func isLangTag(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '+' && r != '_' {
			return false
		}
	}
	return true
}
