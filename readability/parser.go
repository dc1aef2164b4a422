// Package readability extracts the readable article content from an
// HTML document, the way reader modes do: a scoring pass picks the DOM
// subtree most likely to be the article, an escalating retry loop
// relaxes the heuristics when extraction came back too aggressive, and
// a sanitizer turns the winning subtree into clean output plus page
// metadata.
package readability

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"

	"golang.org/x/net/html"
)

// Defaults for Options fields left zero.
const (
	// DefaultCharThreshold is the minimum extracted text length for a
	// candidate to be accepted without escalating.
	DefaultCharThreshold = 500

	// DefaultNbTopCandidates is how many top-scoring nodes are kept as
	// candidates.
	DefaultNbTopCandidates = 5
)

var (
	// ErrNoContent is returned when every escalation attempt produced
	// an empty result: the document has no article content at all.
	ErrNoContent = errors.New("readability: no article content found")

	// ErrNoBody is returned when the input document has no usable
	// <body> element.
	ErrNoBody = errors.New("readability: document has no body")

	// ErrTooLarge is returned when the document exceeds
	// MaxElemsToParse. The guard fires before any other work, so
	// callers can map it to an input-rejection error.
	ErrTooLarge = errors.New("readability: document too large")
)

// Serializer converts the final article subtree into its output string.
// When absent, the parser renders the subtree back to HTML itself and
// the caller can also use Article.Node directly.
type Serializer func(*html.Node) (string, error)

// Options configures a Parser. The zero value is usable; zero fields
// take the documented defaults.
type Options struct {
	// Debug enables verbose slog diagnostics. Output is unchanged.
	Debug bool

	// NbTopCandidates is the size of the ranked candidate list.
	// Default 5.
	NbTopCandidates int

	// CharThreshold is the minimum total text length required to
	// accept a result without further escalation. Default 500.
	CharThreshold int

	// MaxElemsToParse rejects documents with more elements than this
	// before any work happens. 0 means unlimited.
	MaxElemsToParse int

	// KeepClasses retains all original class attributes and skips the
	// class cleanup pass entirely.
	KeepClasses bool

	// ClassesToPreserve lists class names that survive attribute
	// stripping even when KeepClasses is off.
	ClassesToPreserve []string

	// AllowedVideoRegex fully replaces the default video-host pattern
	// used to keep iframe/embed elements.
	AllowedVideoRegex *regexp.Regexp

	// Serializer produces Article.Content from the final subtree.
	Serializer Serializer
}

// Article is the extraction result.
type Article struct {
	// Content is the serialized article: the Serializer's output, or
	// rendered HTML when no serializer was supplied.
	Content string

	// TextContent is the plain text of the article.
	TextContent string

	// Node is the live article subtree, independent of the input
	// document. Always a <div class="page"> container.
	Node *html.Node

	// Length is len(TextContent).
	Length int

	Title         string
	Byline        string
	Excerpt       string
	SiteName      string
	Language      string
	Dir           string
	PublishedTime string
}

// flags is the heuristic-aggressiveness bit set owned by the escalation
// controller. Flags only ever turn off between attempts.
type flags uint8

const (
	flagStripUnlikelys flags = 1 << iota
	flagWeightClasses
	flagCleanConditionally
)

func (f flags) isSet(b flags) bool { return f&b != 0 }

// escalationLevels is the controller's state sequence: each attempt
// drops one more flag. An attempt past the end means failure.
var escalationLevels = []flags{
	flagStripUnlikelys | flagWeightClasses | flagCleanConditionally,
	flagWeightClasses | flagCleanConditionally,
	flagCleanConditionally,
	0,
}

// Parser runs the extraction pipeline. A Parser is cheap and carries no
// state between runs; the compiled patterns it relies on are package
// globals shared read-only.
type Parser struct {
	opts Options
}

// NewParser returns a Parser with defaults applied over opts.
func NewParser(opts Options) *Parser {
	if opts.NbTopCandidates <= 0 {
		opts.NbTopCandidates = DefaultNbTopCandidates
	}
	if opts.CharThreshold <= 0 {
		opts.CharThreshold = DefaultCharThreshold
	}
	return &Parser{opts: opts}
}

// Parse reads an HTML document and extracts its article. pageURL is the
// base for resolving relative links and may be nil.
func (p *Parser) Parse(r io.Reader, pageURL *url.URL) (Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Article{}, fmt.Errorf("readability: parse document: %w", err)
	}
	return p.ParseDocument(doc, pageURL)
}

// ParseDocument extracts the article from an already parsed document.
// The input tree is never mutated: every escalation attempt works on
// its own deep clone.
func (p *Parser) ParseDocument(doc *html.Node, pageURL *url.URL) (Article, error) {
	// Size guard runs before anything else so pathological documents
	// fail fast, before any cloning or mutation.
	if p.opts.MaxElemsToParse > 0 {
		if n := countElements(doc); n > p.opts.MaxElemsToParse {
			return Article{}, fmt.Errorf("%w: %d elements, limit %d", ErrTooLarge, n, p.opts.MaxElemsToParse)
		}
	}
	if documentBody(doc) == nil {
		return Article{}, ErrNoBody
	}

	// Metadata comes from the pristine document, independent of the
	// scoring passes that will mutate the clones.
	md := extractMetadata(doc)

	container, err := p.extract(doc, md.Title, pageURL)
	if err != nil {
		return Article{}, err
	}

	return p.assemble(container, md)
}

// extract drives the escalation state machine: preprocess, score and
// sanitize a fresh clone of doc under each flag level until a candidate
// passes the char threshold. Sanitizing before the length check matters:
// when conditional cleaning guts a result, the next level (without that
// flag) gets its chance. The final level accepts any non-empty result
// best-effort; an empty one is a hard ErrNoContent.
func (p *Parser) extract(doc *html.Node, title string, pageURL *url.URL) (*html.Node, error) {
	for i, level := range escalationLevels {
		last := i == len(escalationLevels)-1

		attempt := cloneNode(doc)
		p.preprocess(attempt, level)

		s := newScorer(level, p.opts)
		candidates := s.scoreDocument(attempt)

		var container *html.Node
		switch {
		case len(candidates) > 0:
			top := s.promote(candidates[0])
			container = s.gatherArticle(top)
			if p.opts.Debug {
				slog.Debug("readability: attempt finished",
					"attempt", i+1,
					"topScore", candidates[0].score,
					"candidates", len(candidates),
				)
			}
		case last:
			// Most relaxed level still found nothing scoreable: take
			// the body verbatim as the candidate.
			container = createElement("div")
			setAttribute(container, "class", "page")
			if body := documentBody(attempt); body != nil {
				for _, c := range childNodes(body) {
					appendChild(container, cloneNode(c))
				}
			}
		default:
			continue
		}

		p.sanitize(container, title, pageURL, level.isSet(flagCleanConditionally))

		textLen := len(innerText(container))
		if textLen >= p.opts.CharThreshold {
			return container, nil
		}
		if last {
			if textLen == 0 {
				return nil, ErrNoContent
			}
			// Best-effort: some content exists, return it rather than
			// failing outright.
			if p.opts.Debug {
				slog.Debug("readability: accepting short result best-effort", "length", textLen)
			}
			return container, nil
		}
		// Too little text: discard this attempt's tree entirely and
		// retry with the next, more permissive flag level.
	}
	return nil, ErrNoContent
}

// assemble produces the Article record: serialized content, plain text,
// metadata, and the excerpt back-filled from the first paragraph when
// the page had no description meta.
func (p *Parser) assemble(container *html.Node, md Metadata) (Article, error) {
	if md.Excerpt == "" {
		for _, para := range getElementsByTagName(container, "p") {
			if text := innerText(para); text != "" {
				md.Excerpt = text
				break
			}
		}
	}

	content := ""
	if p.opts.Serializer != nil {
		out, err := p.opts.Serializer(container)
		if err != nil {
			return Article{}, fmt.Errorf("readability: serialize content: %w", err)
		}
		content = out
	} else {
		content = renderNode(container)
	}

	text := innerText(container)
	return Article{
		Content:       content,
		TextContent:   text,
		Node:          container,
		Length:        len(text),
		Title:         md.Title,
		Byline:        md.Byline,
		Excerpt:       md.Excerpt,
		SiteName:      md.SiteName,
		Language:      md.Language,
		Dir:           md.Dir,
		PublishedTime: md.PublishedTime,
	}, nil
}
