package adapter

import (
	"regexp"
	"strings"
)

const maxSlugLen = 50

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugCollapseRe = regexp.MustCompile(`[-\s]+`)
)

// Slug sanitizes a title for use as a directory-name component: lowercase,
// punctuation stripped, whitespace and hyphen runs collapsed to single
// hyphens, trimmed, and truncated to 50 characters at a hyphen boundary
// when possible.
//
//	Slug("Fix: Bug in API (Critical!)") == "fix-bug-in-api-critical"
func Slug(title string) string {
	s := strings.ToLower(title)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
		if i := strings.LastIndex(s, "-"); i > 0 {
			s = s[:i]
		}
		s = strings.TrimRight(s, "-")
	}
	return s
}

// ItemDir builds the directory name for an item: the id alone, or id-slug
// when a title is known.
func ItemDir(id, title string) string {
	if title == "" {
		return id
	}
	return id + "-" + Slug(title)
}
