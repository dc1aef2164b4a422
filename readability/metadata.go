package readability

import (
	"strings"

	"golang.org/x/net/html"
)

// Metadata holds the page-level fields harvested before extraction.
// Every field is optional; absence is the empty string.
type Metadata struct {
	Title         string
	Byline        string
	Excerpt       string
	SiteName      string
	Language      string
	Dir           string
	PublishedTime string
}

// extractMetadata scans the original, unmodified document once. It
// never fails: each field independently falls back to empty when the
// page carries no usable signal.
func extractMetadata(doc *html.Node) Metadata {
	values := collectMetaValues(doc)

	md := Metadata{
		Title:         resolveTitle(doc, values),
		Byline:        resolveByline(doc, values),
		SiteName:      firstValue(values, "og:site_name", "twitter:site"),
		Excerpt:       firstValue(values, "description", "og:description", "twitter:description"),
		PublishedTime: resolvePublishedTime(doc, values),
	}

	if root := findFirst(doc, "html"); root != nil {
		md.Language = getAttribute(root, "lang")
		md.Dir = getAttribute(root, "dir")
	}
	if md.Language == "" {
		md.Language = firstValue(values, "og:locale", "language")
	}
	if md.Dir == "" {
		if body := documentBody(doc); body != nil {
			md.Dir = getAttribute(body, "dir")
		}
	}
	return md
}

// collectMetaValues maps normalised meta keys (name, property and
// itemprop attributes, lowercased and trimmed) to their content values.
// Later tags win so page-specific overrides beat theme defaults.
func collectMetaValues(doc *html.Node) map[string]string {
	values := make(map[string]string)
	for _, meta := range getElementsByTagName(doc, "meta") {
		content := strings.TrimSpace(getAttribute(meta, "content"))
		if content == "" {
			continue
		}
		for _, keyAttr := range []string{"name", "property", "itemprop"} {
			key := strings.ToLower(strings.TrimSpace(getAttribute(meta, keyAttr)))
			if key != "" {
				values[key] = content
			}
		}
	}
	return values
}

// firstValue returns the first non-empty value along a priority chain.
func firstValue(values map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := values[k]; v != "" {
			return v
		}
	}
	return ""
}

// resolveTitle picks the article title by priority: og:title,
// twitter:title, a headline-looking <h1>, then the page <title>. The
// chosen title is de-duplicated against the page title: when the page
// title is a decorated variant ("Headline | Site"), the longer plausible
// segment wins.
func resolveTitle(doc *html.Node, values map[string]string) string {
	pageTitle := ""
	if t := findFirst(doc, "title"); t != nil {
		pageTitle = innerText(t)
	}

	title := firstValue(values, "og:title", "twitter:title")
	if title == "" {
		if h1 := headlineHeading(doc, pageTitle); h1 != "" {
			title = h1
		}
	}
	if title == "" {
		title = pageTitle
	}
	if title == "" {
		return ""
	}

	// De-duplicate against a separator-decorated page title.
	if pageTitle != "" && title != pageTitle && strings.Contains(pageTitle, title) {
		if seg := bestTitleSegment(pageTitle); len(seg) > len(title) {
			title = seg
		}
	}
	if rxTitleSeparators.MatchString(title) {
		if seg := bestTitleSegment(title); seg != "" {
			title = seg
		}
	}
	return strings.TrimSpace(title)
}

// bestTitleSegment splits a decorated title on the common separators and
// returns the longest plausible segment (at least three words, or the
// longest by character count otherwise).
func bestTitleSegment(title string) string {
	parts := rxTitleSeparators.Split(title, -1)
	if len(parts) < 2 {
		return title
	}
	// Headlines read as multi-word phrases while site names are often
	// one or two words; prefer the longest segment with at least three
	// words, falling back to the longest by character count.
	best, wordy := "", ""
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) > len(best) {
			best = part
		}
		if len(strings.Fields(part)) >= 3 && len(part) > len(wordy) {
			wordy = part
		}
	}
	if wordy != "" {
		return wordy
	}
	return best
}

// headlineHeading returns the first <h1> whose text looks like a
// headline: non-trivial length and, when a page title exists, sharing
// words with it.
func headlineHeading(doc *html.Node, pageTitle string) string {
	for _, h1 := range getElementsByTagName(doc, "h1") {
		text := innerText(h1)
		if len(text) < 10 || len(text) > 200 {
			continue
		}
		if pageTitle == "" || strings.Contains(strings.ToLower(pageTitle), strings.ToLower(firstWord(text))) {
			return text
		}
	}
	return ""
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}

// resolveByline: rel="author" elements first, then author meta tags,
// then any element whose class/id matches the byline pattern.
func resolveByline(doc *html.Node, values map[string]string) string {
	for _, a := range getElementsByTagName(doc, "a", "link") {
		if strings.EqualFold(getAttribute(a, "rel"), "author") {
			if text := innerText(a); isPlausibleByline(text) {
				return text
			}
		}
	}
	if v := firstValue(values, "author", "article:author", "dc.creator", "dcterm.creator", "parsely-author"); v != "" && isPlausibleByline(v) {
		return v
	}
	for _, n := range getElementsByTagName(doc, "*") {
		if rxByline.MatchString(classAndID(n)) || rxByline.MatchString(getAttribute(n, "rel")) {
			if text := innerText(n); isPlausibleByline(text) {
				return text
			}
		}
	}
	return ""
}

// isPlausibleByline rejects empty and paragraph-length "author" strings.
func isPlausibleByline(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) < 100
}

// resolvePublishedTime prefers the article:published_time meta, then the
// first <time> element carrying a datetime attribute.
func resolvePublishedTime(doc *html.Node, values map[string]string) string {
	if v := firstValue(values, "article:published_time", "parsely-pub-date", "datepublished"); v != "" {
		return v
	}
	for _, t := range getElementsByTagName(doc, "time") {
		if dt := getAttribute(t, "datetime"); dt != "" {
			return dt
		}
	}
	return ""
}
