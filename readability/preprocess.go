package readability

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// The preprocessor runs once per escalation attempt, always on a fresh
// clone of the pristine document. It is destructive: scripts, styles and
// boilerplate-looking nodes are removed in place so the scorer only ever
// sees plausible content.

// preprocess normalises doc for scoring. Flag-dependent behaviour:
// unlikely-candidate removal only happens while flagStripUnlikelys is
// active.
func (p *Parser) preprocess(doc *html.Node, f flags) {
	// Metadata was already harvested from the pristine document, so
	// head plumbing can go wholesale.
	stripTags(doc, "script", "style", "link", "meta", "template")
	unwrapNoscriptImages(doc)
	stripTags(doc, "noscript")
	replaceBrs(doc)
	replaceFonts(doc)
	if f.isSet(flagStripUnlikelys) {
		p.stripUnlikelyCandidates(doc)
	}
	divsToParagraphs(doc)
}

// stripTags removes every descendant element with one of the given tags.
func stripTags(doc *html.Node, tags ...string) {
	for _, n := range getElementsByTagName(doc, tags...) {
		detachNode(n)
	}
}

// unwrapNoscriptImages promotes the single <img> inside a <noscript> to
// the noscript's position. Lazy-loading sites frequently keep the real
// image there while the visible one is a placeholder.
func unwrapNoscriptImages(doc *html.Node) {
	for _, ns := range getElementsByTagName(doc, "noscript") {
		img := singleImageChild(ns)
		if img == nil {
			continue
		}
		detachNode(img)
		replaceNode(ns, img)
	}
}

// singleImageChild returns the lone <img> under n if the subtree holds
// exactly one element and it is an image, else nil.
func singleImageChild(n *html.Node) *html.Node {
	elems := getElementsByTagName(n, "*")
	if len(elems) == 1 && tagName(elems[0]) == "img" {
		return elems[0]
	}
	// Some parsers keep noscript content as an escaped text child.
	if len(elems) == 0 && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
		frag, err := html.ParseFragment(strings.NewReader(n.FirstChild.Data), &html.Node{
			Type:     html.ElementNode,
			Data:     "body",
			DataAtom: atom.Body,
		})
		if err != nil || len(frag) != 1 || tagName(frag[0]) != "img" {
			return nil
		}
		return frag[0]
	}
	return nil
}

// replaceBrs turns runs of two or more <br> elements into paragraph
// breaks: the run is dropped and the following phrasing content is
// wrapped in a fresh <p>.
func replaceBrs(doc *html.Node) {
	for _, br := range getElementsByTagName(doc, "br") {
		if br.Parent == nil {
			continue // already consumed by an earlier run
		}

		// Walk forward over whitespace counting consecutive brs.
		next := br.NextSibling
		replaced := false
		for next != nil {
			if next.Type == html.TextNode && strings.TrimSpace(next.Data) == "" {
				next = next.NextSibling
				continue
			}
			if tagName(next) != "br" {
				break
			}
			replaced = true
			drop := next
			next = next.NextSibling
			detachNode(drop)
		}
		if !replaced {
			continue
		}

		// The first br of the run becomes the paragraph container.
		p := createElement("p")
		replaceNode(br, p)

		// Pull following siblings into the paragraph until the next
		// br run or block element.
		sib := p.NextSibling
		for sib != nil {
			if tagName(sib) == "br" {
				if n := nextElementSibling(sib); n != nil && tagName(n) == "br" {
					break
				}
			}
			if sib.Type == html.ElementNode && blockTags[tagName(sib)] && tagName(sib) != "a" && tagName(sib) != "img" {
				break
			}
			moved := sib
			sib = sib.NextSibling
			appendChild(p, moved)
		}
		for p.LastChild != nil && isWhitespace(p.LastChild) {
			p.RemoveChild(p.LastChild)
		}
	}
}

// replaceFonts rewrites legacy <font> styling wrappers as neutral spans.
func replaceFonts(doc *html.Node) {
	for _, f := range getElementsByTagName(doc, "font") {
		f.Data = "span"
		f.DataAtom = 0
		f.Attr = nil
	}
}

// stripUnlikelyCandidates removes nodes whose class/id match the
// unlikely pattern, unless the maybe-allow-list also matches or the node
// is a structural root. When signals conflict we fail open and keep the
// node: dropping real content is worse than keeping boilerplate.
func (p *Parser) stripUnlikelyCandidates(doc *html.Node) {
	body := documentBody(doc)
	for _, n := range getElementsByTagName(doc, "*") {
		if n.Parent == nil || n == body {
			continue
		}
		switch tagName(n) {
		case "html", "body", "article", "main", "a":
			continue
		}
		if isElementHidden(n) {
			detachNode(n)
			continue
		}
		match := classAndID(n)
		if strings.TrimSpace(match) == "" {
			continue
		}
		if rxUnlikelyCandidates.MatchString(match) && !rxMaybeCandidate.MatchString(match) {
			if p.opts.Debug {
				slog.Debug("readability: removing unlikely candidate",
					"tag", tagName(n), "match", strings.TrimSpace(match))
			}
			detachNode(n)
		}
	}
}

// divsToParagraphs converts <div> elements that contain no block-level
// children into <p> so they become eligible for scoring. Divs wrapping a
// single <p> and nothing else are unwrapped instead.
func divsToParagraphs(doc *html.Node) {
	for _, div := range getElementsByTagName(doc, "div") {
		if div.Parent == nil {
			continue
		}
		if ch := children(div); len(ch) == 1 && tagName(ch[0]) == "p" && onlyWhitespaceAround(div, ch[0]) {
			unwrapNode(div)
			continue
		}
		if !hasBlockChild(div) {
			div.Data = "p"
			div.DataAtom = 0
		}
	}
}

// hasBlockChild reports whether any direct child of n is block-level.
func hasBlockChild(n *html.Node) bool {
	for _, c := range children(n) {
		if blockTags[tagName(c)] && tagName(c) != "a" && tagName(c) != "img" {
			return true
		}
	}
	return false
}

// onlyWhitespaceAround reports whether every child of parent other than
// keep is whitespace.
func onlyWhitespaceAround(parent, keep *html.Node) bool {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c == keep {
			continue
		}
		if !isWhitespace(c) {
			return false
		}
	}
	return true
}
