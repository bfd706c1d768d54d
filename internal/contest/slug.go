package contest

import "strings"

// Slugify normalizes a contest title into its URL slug: lowercase, strip
// everything outside [a-z0-9 -], collapse whitespace runs and hyphen runs
// into single hyphens, trim leading and trailing hyphens.
func Slugify(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '-':
			b.WriteByte('-')
		}
	}

	// Collapse hyphen runs.
	var out strings.Builder
	out.Grow(b.Len())
	prevHyphen := false
	for _, r := range b.String() {
		if r == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		out.WriteRune(r)
	}
	return strings.Trim(out.String(), "-")
}
