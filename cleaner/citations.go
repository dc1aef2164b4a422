package cleaner

import (
	"fmt"
	"regexp"
	"strings"
)

// rxInlineLink matches a Markdown inline link: [text](url).
var rxInlineLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// ConvertToCitations rewrites inline Markdown links as numbered
// reference-style citations, which keeps long URLs out of the prose
// an LLM reads. The references are appended after a rule at the end
// of the document, and repeated URLs share one number:
//
//	See [Docs][1] and the [changelog][2].
//
//	---
//	[1]: https://example.com/docs
//	[2]: https://example.com/changelog
//
// Input without inline links comes back unchanged.
func ConvertToCitations(markdown string) string {
	numbers := make(map[string]int)
	var order []string

	rewritten := rxInlineLink.ReplaceAllStringFunc(markdown, func(link string) string {
		m := rxInlineLink.FindStringSubmatch(link)
		if m == nil {
			return link
		}
		text, url := m[1], m[2]
		n, seen := numbers[url]
		if !seen {
			n = len(order) + 1
			numbers[url] = n
			order = append(order, url)
		}
		return fmt.Sprintf("[%s][%d]", text, n)
	})

	if len(order) == 0 {
		return markdown
	}

	var b strings.Builder
	b.WriteString(rewritten)
	b.WriteString("\n\n---\n")
	for i, url := range order {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d]: %s", i+1, url)
	}
	return b.String()
}
