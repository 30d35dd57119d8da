package simplepublish

import "strings"

// Slugify normalizes a display string into a URL-safe slug: lowercase, runs
// of non-word characters collapsed to a single hyphen, no leading or trailing
// hyphen. The result may be empty (e.g. all-punctuation input); callers must
// substitute a fallback because a slug is never empty. Idempotent.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	return b.String()
}
