package readability

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Node capability helpers over golang.org/x/net/html trees. The whole
// engine talks to documents through these functions; nothing outside
// this file touches html.Node internals directly.

// tagName returns the lowercase tag name of an element node, or "" for
// any other node type.
func tagName(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// getAttribute looks up an attribute case-insensitively. Missing
// attributes return "".
func getAttribute(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val
		}
	}
	return ""
}

// setAttribute overwrites an existing attribute or appends a new one.
func setAttribute(n *html.Node, name, value string) {
	for i, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// removeAttribute deletes an attribute if present.
func removeAttribute(n *html.Node, name string) {
	for i, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// classAndID concatenates the class and id attributes for pattern
// matching.
func classAndID(n *html.Node) string {
	return getAttribute(n, "class") + " " + getAttribute(n, "id")
}

// textContent aggregates the text of all descendant text nodes.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// innerText is textContent with whitespace normalised: runs collapse to
// a single space and the ends are trimmed.
func innerText(n *html.Node) string {
	return strings.TrimSpace(rxNormalizeSpaces.ReplaceAllString(textContent(n), " "))
}

// children returns the element children of n in document order.
func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// childNodes returns all children (element and text) of n.
func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// appendChild detaches n from its current parent and appends it to dst.
func appendChild(dst, n *html.Node) {
	detachNode(n)
	dst.AppendChild(n)
}

// detachNode removes n from its parent, if any. Safe on detached nodes.
func detachNode(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// replaceNode swaps old for new in old's parent. new is detached first
// so x/net/html's sibling invariants hold.
func replaceNode(old, new *html.Node) {
	if old.Parent == nil {
		return
	}
	detachNode(new)
	old.Parent.InsertBefore(new, old)
	old.Parent.RemoveChild(old)
}

// unwrapNode replaces n with its own children.
func unwrapNode(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// cloneNode deep-copies a subtree. The clone is detached and shares no
// nodes with the original, which is what lets each escalation attempt
// start from a pristine document.
func cloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}

// createElement makes a detached element node with the given tag.
func createElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag}
}

// getElementsByTagName collects descendant elements matching any of the
// given lowercase tag names, in document order. "*" matches every
// element.
func getElementsByTagName(root *html.Node, tags ...string) []*html.Node {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (want["*"] || want[tagName(c)]) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// findFirst returns the first descendant element with the given tag, or
// nil.
func findFirst(root *html.Node, tag string) *html.Node {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && tagName(n) == tag {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

// documentBody returns the <body> element of a parsed document, or nil
// when the input had no usable body.
func documentBody(doc *html.Node) *html.Node {
	return findFirst(doc, "body")
}

// countElements counts every element node under root, root excluded.
func countElements(root *html.Node) int {
	n := 0
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			n++
		}
		n += countElements(c)
	}
	return n
}

// nextElementSibling skips text/comment nodes.
func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// renderNode serialises a subtree back to HTML. Render only fails on
// writer errors, which a bytes.Buffer never produces.
func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// isWhitespace reports whether a node contributes no visible content:
// an empty/blank text node or a <br>.
func isWhitespace(n *html.Node) bool {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data) == ""
	}
	return n.Type == html.ElementNode && tagName(n) == "br"
}

// linkDensity is the fraction of a node's text that sits inside anchor
// descendants, clamped to [0,1]. High density reads as navigation.
func linkDensity(n *html.Node) float64 {
	total := len(innerText(n))
	if total == 0 {
		return 0
	}
	linked := 0
	for _, a := range getElementsByTagName(n, "a") {
		linked += len(innerText(a))
	}
	d := float64(linked) / float64(total)
	if d > 1 {
		d = 1
	}
	return d
}

// charCount counts occurrences of a separator in the node's text.
func charCount(n *html.Node, sep string) int {
	return strings.Count(innerText(n), sep)
}

// isElementHidden checks the two visibility signals the engine honours:
// inline display:none/visibility:hidden styles and the hidden attribute.
func isElementHidden(n *html.Node) bool {
	if style := getAttribute(n, "style"); style != "" && rxDisplayNone.MatchString(style) {
		return true
	}
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, "hidden") {
			return true
		}
	}
	return false
}
