package cleaner

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// FilterContent applies the include/exclude selector filters before
// extraction, on the same selector engine and tree library the rest of
// the pipeline runs on. Excluded subtrees are removed first; when
// include selectors are given, only their matches' outer HTML moves
// on, falling back to the exclude-filtered document when nothing
// matches. A selector that fails to parse is skipped: these filters
// are hints, the strict css_selector option is where parse errors
// reject the request.
func FilterContent(rawHTML string, includeTags, excludeTags []string) string {
	if len(includeTags) == 0 && len(excludeTags) == 0 {
		return rawHTML
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, selector := range excludeTags {
		sel, err := cascadia.Parse(selector)
		if err != nil {
			continue
		}
		for _, node := range cascadia.QueryAll(doc, sel) {
			if node.Parent != nil {
				node.Parent.RemoveChild(node)
			}
		}
	}

	if len(includeTags) > 0 {
		var matches []*html.Node
		seen := make(map[*html.Node]bool)
		for _, selector := range includeTags {
			sel, err := cascadia.Parse(selector)
			if err != nil {
				continue
			}
			for _, node := range cascadia.QueryAll(doc, sel) {
				if !seen[node] {
					seen[node] = true
					matches = append(matches, node)
				}
			}
		}
		if len(matches) > 0 {
			var buf bytes.Buffer
			for _, node := range matches {
				if err := html.Render(&buf, node); err != nil {
					return rawHTML
				}
			}
			return buf.String()
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return rawHTML
	}
	return buf.String()
}
