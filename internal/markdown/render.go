// Package markdown renders the small note-taking subset of markdown to HTML.
//
// The subset covers bold, italics, and dash lists. Anything else passes
// through escaped, so note content can never inject markup.
package markdown

import (
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	htmlEscaper   = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#039;",
	)
)

// Render converts note content to an HTML fragment. Input is HTML-escaped
// before any markdown rules apply. Consecutive "- " lines collapse into a
// single <ul>, empty lines become <br/>, and all other lines pass through
// unchanged.
func Render(content string) string {
	if content == "" {
		return ""
	}

	escaped := htmlEscaper.Replace(content)
	escaped = boldPattern.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = italicPattern.ReplaceAllString(escaped, "<em>$1</em>")

	lines := strings.Split(escaped, "\n")
	rendered := make([]string, 0, len(lines)+1)
	var inList bool
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "- ") {
			item := strings.TrimSpace(line)[2:]
			if !inList {
				rendered = append(rendered, "<ul><li>"+item+"</li>")
				inList = true
				continue
			}
			rendered = append(rendered, "<li>"+item+"</li>")
			continue
		}
		if line == "" {
			line = "<br/>"
		}
		if inList {
			line = "</ul>" + line
			inList = false
		}
		rendered = append(rendered, line)
	}
	if inList {
		rendered = append(rendered, "</ul>")
	}
	return strings.Join(rendered, "\n")
}
