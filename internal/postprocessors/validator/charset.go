package validator

import (
	"strings"
	"unicode"
)

// allowedPunct is the punctuation accepted in chunk content besides the
// ASCII range '+'..'='.
const allowedPunct = "。，；：！？\"（）【】《》、·%@#￥&*<>"

// Allowed reports whether r belongs to the expected character set of
// regulation text. Chunks with more than AbnormalThreshold distinct
// characters outside it are flagged.
func Allowed(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FA5:
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= '+' && r <= '=':
		return true
	case unicode.IsSpace(r):
		return true
	default:
		return strings.ContainsRune(allowedPunct, r)
	}
}

// AbnormalThreshold is the number of distinct abnormal characters tolerated
// before a chunk is flagged.
const AbnormalThreshold = 3

// Abnormal returns the distinct characters of s not accepted by allowed,
// in first-seen order.
func Abnormal(s string, allowed func(rune) bool) []rune {
	var out []rune
	seen := make(map[rune]bool)
	for _, r := range s {
		if allowed(r) || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
