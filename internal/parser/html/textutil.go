// Package html extracts label/value pairs from scraped pages and normalizes
// the text it pulls out.
//
// Extraction is structural: it walks the parsed node tree and matches
// elements by role and class tokens, never by byte offsets, so cosmetic
// changes to a page do not shift the fields.
package html

import "strings"

// CollapseWhitespace replaces runs of whitespace with a single ASCII space
// and trims both ends.
//
// Whitespace is space, tab, newline, carriage return and the non-breaking
// space, which scraped pages use between numbers and units ("2 hours").
func CollapseWhitespace(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	seenSpace := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', ' ':
			if !seenSpace {
				b.WriteByte(' ')
				seenSpace = true
			}
		default:
			b.WriteRune(r)
			seenSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}

// JoinText collapses each part, drops empty ones and joins the rest with a
// single space.
func JoinText(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = CollapseWhitespace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
