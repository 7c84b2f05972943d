package drafts

import "strings"

const maxSlugLen = 50

// Slugify converts a free-form name into a filesystem-safe slug for
// embedding in draft ids. Example: "User Auth Flow" → "user-auth-flow".
//
// Rules:
//   - Lowercase
//   - Spaces and underscores become hyphens
//   - Non-alphanumeric characters (except hyphens) are removed
//   - Consecutive hyphens are collapsed
//   - Leading/trailing hyphens are trimmed
//   - Truncated to 50 characters (at a word boundary if possible)
//   - Empty input returns empty string (the id falls back to a datestamp)
func Slugify(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '_' || r == '-':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) <= maxSlugLen {
		return slug
	}

	// Truncate at word boundary if possible.
	truncated := slug[:maxSlugLen]
	if lastHyphen := strings.LastIndex(truncated, "-"); lastHyphen > maxSlugLen/2 {
		truncated = truncated[:lastHyphen]
	}

	return strings.TrimRight(truncated, "-")
}
