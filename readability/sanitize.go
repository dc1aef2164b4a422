package readability

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/use-agent/readable/simhash"
)

// Post-selection sanitizer. Runs only on the winning article container,
// after the escalation controller has accepted a candidate. Pass order
// matters: later passes assume the noise removed by earlier ones is
// gone.

const (
	// conditionalMinCommas: below this comma count a suspicious block
	// needs other positive signals to survive conditional cleaning.
	conditionalMinCommas = 10

	// conditionalMaxLinkDensity is the cutoff for suspicious blocks
	// with a non-negative class weight.
	conditionalMaxLinkDensity = 0.5

	// titleSimhashDistance is the Hamming distance at or under which a
	// heading counts as a duplicate of the article title.
	titleSimhashDistance = 6
)

// keptAttributes survive attribute stripping on every element. href and
// src are additionally rewritten to absolute URIs first.
var keptAttributes = map[string]bool{
	"href": true, "src": true, "srcset": true, "alt": true,
	"colspan": true, "rowspan": true, "datetime": true, "lang": true, "dir": true,
}

// mediaTags may keep a title attribute.
var mediaTags = map[string]bool{
	"img": true, "picture": true, "figure": true, "video": true, "audio": true, "source": true,
}

// conditionalTags are the containers subject to conditional cleaning.
var conditionalTags = []string{"form", "fieldset", "table", "ul", "div"}

// sanitize cleans the article container in place.
//
// cleanConditionally reflects the accepted attempt's flag set: the most
// relaxed escalation level turns it off so borderline blocks survive.
func (p *Parser) sanitize(container *html.Node, title string, baseURL *url.URL, cleanConditionally bool) {
	stripTags(container, "script", "style", "link", "object", "embed", "footer", "aside")
	p.filterEmbeds(container)
	if cleanConditionally {
		p.cleanConditionally(container)
	}
	p.cleanHeaders(container, title)
	p.cleanTables(container)
	fixRelativeURIs(container, baseURL)
	p.stripAttributes(container)
	removeEmptyNodes(container)
	collapseWrappers(container)
}

// filterEmbeds drops iframe/embed/object/video elements unless their
// source matches the allowed-video pattern. The caller's pattern fully
// replaces the default, it does not augment it.
func (p *Parser) filterEmbeds(container *html.Node) {
	allowed := p.opts.AllowedVideoRegex
	if allowed == nil {
		allowed = rxDefaultVideos
	}
	for _, n := range getElementsByTagName(container, "iframe", "embed", "object", "video") {
		src := getAttribute(n, "src")
		if src == "" {
			src = getAttribute(n, "data")
		}
		if src != "" && allowed.MatchString(src) {
			continue
		}
		if p.opts.Debug {
			slog.Debug("readability: dropping embed", "tag", tagName(n), "src", src)
		}
		detachNode(n)
	}
}

// cleanConditionally removes blocks matching the negative class/id
// pattern unless their content looks legitimate: enough commas, low
// link density, more text than lists and images. This is the same logic
// as preprocessing, applied more conservatively because it runs on the
// accepted content.
func (p *Parser) cleanConditionally(container *html.Node) {
	for _, tag := range conditionalTags {
		for _, n := range getElementsByTagName(container, tag) {
			if n.Parent == nil {
				continue
			}
			if p.shouldRemoveConditionally(n) {
				detachNode(n)
			}
		}
	}
}

func (p *Parser) shouldRemoveConditionally(n *html.Node) bool {
	weight := 0.0
	if rxPositive.MatchString(classAndID(n)) {
		weight += classWeight
	}
	if rxNegative.MatchString(classAndID(n)) {
		weight -= classWeight
	}
	if weight < 0 {
		return true
	}

	if charCount(n, ",") >= conditionalMinCommas {
		return false
	}

	text := innerText(n)
	paragraphs := len(getElementsByTagName(n, "p"))
	images := len(getElementsByTagName(n, "img"))
	inputs := len(getElementsByTagName(n, "input"))
	listItems := len(getElementsByTagName(n, "li"))
	density := linkDensity(n)

	switch {
	case images > 1 && paragraphs == 0 && images > paragraphs*2:
		return true
	case tagName(n) != "ul" && tagName(n) != "ol" && listItems > paragraphs:
		return true
	case inputs > paragraphs/3+1:
		return true
	case len(text) < minParagraphLength && images == 0:
		return true
	case density > conditionalMaxLinkDensity:
		return true
	}
	return false
}

// cleanHeaders removes H1–H6 that duplicate the extracted title (exact,
// substring or simhash near-duplicate) or carry a negative class
// weight.
func (p *Parser) cleanHeaders(container *html.Node, title string) {
	titleFP := simhash.Fingerprint(strings.ToLower(title))
	for _, h := range getElementsByTagName(container, "h1", "h2", "h3", "h4", "h5", "h6") {
		if h.Parent == nil {
			continue
		}
		if rxNegative.MatchString(classAndID(h)) && !rxPositive.MatchString(classAndID(h)) {
			detachNode(h)
			continue
		}
		if title == "" {
			continue
		}
		text := innerText(h)
		if text == "" {
			continue
		}
		lower, lowerTitle := strings.ToLower(text), strings.ToLower(title)
		if lower == lowerTitle ||
			(len(lower) >= 10 && strings.Contains(lowerTitle, lower)) ||
			strings.Contains(lower, lowerTitle) ||
			simhash.Similar(simhash.Fingerprint(lower), titleFP, titleSimhashDistance) {
			if p.opts.Debug {
				slog.Debug("readability: dropping duplicate title heading", "heading", text)
			}
			detachNode(h)
		}
	}
}

// cleanTables distinguishes data tables from layout tables: data tables
// (th cells, caption, summary/role attributes, or a real grid) stay
// intact, single-cell layout tables unwrap into their content.
func (p *Parser) cleanTables(container *html.Node) {
	for _, table := range getElementsByTagName(container, "table") {
		if table.Parent == nil || isDataTable(table) {
			continue
		}
		cells := getElementsByTagName(table, "td")
		if len(cells) == 1 {
			cell := cells[0]
			cell.Data = "div"
			cell.DataAtom = 0
			detachNode(cell)
			replaceNode(table, cell)
		}
	}
}

// isDataTable applies the accessibility heuristics: explicit semantics
// first, then shape.
func isDataTable(table *html.Node) bool {
	if getAttribute(table, "summary") != "" {
		return true
	}
	if role := getAttribute(table, "role"); strings.EqualFold(role, "grid") || strings.EqualFold(role, "table") {
		return true
	}
	if len(getElementsByTagName(table, "th", "caption", "thead", "tfoot", "col", "colgroup")) > 0 {
		return true
	}
	if len(getElementsByTagName(table, "table")) > 0 {
		return false // nested tables are layout
	}
	rows := getElementsByTagName(table, "tr")
	if len(rows) < 2 {
		return false
	}
	cols := 0
	for _, cell := range children(rows[0]) {
		if tagName(cell) == "td" {
			cols++
		}
	}
	return cols > 1
}

// fixRelativeURIs resolves href and src attributes against the document
// base. URL resolution is the host environment's job; here it is just
// url.URL.ResolveReference.
func fixRelativeURIs(container *html.Node, baseURL *url.URL) {
	if baseURL == nil {
		return
	}
	resolve := func(n *html.Node, attr string) {
		val := getAttribute(n, attr)
		if val == "" || strings.HasPrefix(val, "#") || strings.HasPrefix(val, "data:") {
			return
		}
		ref, err := url.Parse(val)
		if err != nil {
			return
		}
		setAttribute(n, attr, baseURL.ResolveReference(ref).String())
	}
	for _, a := range getElementsByTagName(container, "a") {
		resolve(a, "href")
	}
	for _, media := range getElementsByTagName(container, "img", "picture", "figure", "video", "audio", "source", "iframe") {
		resolve(media, "src")
	}
}

// stripAttributes removes presentational attributes from every element,
// keeping only the whitelist plus preserved classes. With KeepClasses
// the class cleanup is skipped entirely and original classes survive
// verbatim.
func (p *Parser) stripAttributes(container *html.Node) {
	for _, n := range getElementsByTagName(container, "*") {
		kept := n.Attr[:0]
		for _, attr := range n.Attr {
			key := strings.ToLower(attr.Key)
			switch {
			case keptAttributes[key]:
				kept = append(kept, attr)
			case key == "title" && mediaTags[tagName(n)]:
				kept = append(kept, attr)
			case key == "class":
				if p.opts.KeepClasses {
					kept = append(kept, attr)
				} else if filtered := p.preservedClasses(attr.Val); filtered != "" {
					kept = append(kept, html.Attribute{Key: "class", Val: filtered})
				}
			}
		}
		n.Attr = kept
	}
}

// preservedClasses filters a class attribute down to the caller's
// preserve list, plus the container's own "page" marker.
func (p *Parser) preservedClasses(classAttr string) string {
	if len(p.opts.ClassesToPreserve) == 0 {
		return ""
	}
	var kept []string
	for _, class := range strings.Fields(classAttr) {
		for _, preserve := range p.opts.ClassesToPreserve {
			if class == preserve {
				kept = append(kept, class)
				break
			}
		}
	}
	return strings.Join(kept, " ")
}

// removeEmptyNodes drops elements left with no text and no meaningful
// media, bottom-up, repeating until a fixed point.
func removeEmptyNodes(container *html.Node) {
	for {
		removed := false
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			c := n.FirstChild
			for c != nil {
				next := c.NextSibling
				walk(c)
				c = next
			}
			if n == container || n.Type != html.ElementNode {
				return
			}
			switch tagName(n) {
			case "img", "picture", "video", "audio", "source", "iframe", "br", "hr", "td", "th":
				return
			}
			if innerText(n) == "" && len(getElementsByTagName(n, "img", "picture", "video", "audio", "iframe", "embed")) == 0 {
				detachNode(n)
				removed = true
			}
		}
		walk(container)
		if !removed {
			return
		}
	}
}

// collapseWrappers unwraps redundant single-child wrappers: an
// attribute-less element whose only child is an element of the same
// block/inline class contributes nothing.
func collapseWrappers(container *html.Node) {
	changed := true
	for changed {
		changed = false
		for _, n := range getElementsByTagName(container, "div", "span", "section") {
			if n.Parent == nil || len(n.Attr) > 0 {
				continue
			}
			ch := children(n)
			if len(ch) != 1 || !onlyWhitespaceAround(n, ch[0]) {
				continue
			}
			if isBlockLike(n) == isBlockLike(ch[0]) {
				unwrapNode(n)
				changed = true
			}
		}
	}
}

var rxInlineTag = regexp.MustCompile(`^(span|a|em|strong|b|i|u|code|small|sub|sup)$`)

func isBlockLike(n *html.Node) bool {
	return !rxInlineTag.MatchString(tagName(n))
}
