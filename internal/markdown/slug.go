package markdown

import "strings"

// Slug derives a heading anchor: trim, split on single spaces, drop empty
// tokens, join with '-', keep only [A-Za-z0-9-], lower-case.
func Slug(heading string) string {
	parts := strings.Split(strings.TrimSpace(heading), " ")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	joined := strings.Join(kept, "-")
	var b strings.Builder
	b.Grow(len(joined))
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
			b.WriteByte(c)
		}
	}
	return b.String()
}
