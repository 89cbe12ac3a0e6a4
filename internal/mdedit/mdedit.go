// Package mdedit provides byte-preserving edit primitives for the markdown
// documents gameplan maintains. Edits splice exact spans; everything outside
// the matched span is carried through unchanged, which is what makes repeated
// merges idempotent.
package mdedit

import (
	"regexp"
	"strings"
)

// fieldRe matches a labeled field line such as "**Status**: Open". The match
// is anchored at line start (after optional indentation) and bounded to a
// single line, so label-like text inside prose never matches.
func fieldRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^([ \t]*)\*\*` + regexp.QuoteMeta(label) + `\*\*:[^\n]*$`)
}

// SetField replaces the value of the first line carrying the given label.
// When the same label appears twice, the first occurrence wins. A document
// without the label is returned unchanged; labels are never injected.
func SetField(doc, label, value string) string {
	m := fieldRe(label).FindStringSubmatchIndex(doc)
	if m == nil {
		return doc
	}
	indent := doc[m[2]:m[3]]
	return doc[:m[0]] + indent + "**" + label + "**: " + value + doc[m[1]:]
}

// Field returns the current value of the first line carrying the label.
func Field(doc, label string) (string, bool) {
	m := fieldRe(label).FindStringIndex(doc)
	if m == nil {
		return "", false
	}
	line := doc[m[0]:m[1]]
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value), true
}

// ReplaceSection replaces the body of the section whose heading line equals
// heading. The body spans from the line after the heading to the next "## "
// line or end of document. The spliced section is normalized to
// heading, body, one blank line; returns found=false when the heading is
// absent and the document is unchanged.
func ReplaceSection(doc, heading, body string) (string, bool) {
	lines := strings.Split(doc, "\n")

	start := -1
	for i, l := range lines {
		if strings.TrimRight(l, " \t") == heading {
			start = i
			break
		}
	}
	if start < 0 {
		return doc, false
	}

	end := len(lines)
	for j := start + 1; j < len(lines); j++ {
		if strings.HasPrefix(lines[j], "## ") {
			end = j
			break
		}
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[:start+1]...)
	out = append(out, strings.Split(body, "\n")...)
	out = append(out, "")
	if end < len(lines) {
		out = append(out, lines[end:]...)
	}
	return strings.Join(out, "\n"), true
}

// ReplaceFirst replaces the first match of re with repl.
func ReplaceFirst(doc string, re *regexp.Regexp, repl string) string {
	m := re.FindStringIndex(doc)
	if m == nil {
		return doc
	}
	return doc[:m[0]] + repl + doc[m[1]:]
}

// Title returns the text of the first H1 heading, or empty string.
func Title(doc string) string {
	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
