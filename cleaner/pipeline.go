package cleaner

import (
	"errors"
	"math"
	nurl "net/url"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/readable/models"
	"github.com/use-agent/readable/readability"
)

// Cleaner orchestrates the two-stage pipeline:
//
//	Stage 1 (readability): extract the article, strip nav/footer/sidebar/ads
//	Stage 2 (markdown):    convert clean HTML → Markdown (or html/text pass-through)
//
// The converter is created once and reused across all requests (goroutine-safe).
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{
		mdConverter: newMarkdownConverter(),
	}
}

// CleanOptions carries per-request extraction parameters for the pipeline.
type CleanOptions struct {
	IncludeTags       []string
	ExcludeTags       []string
	CSSSelector       string
	CharThreshold     int
	KeepClasses       bool
	ClassesToPreserve []string
	AllowedVideoRegex string
	MaxElemsToParse   int
	Citations         bool
}

// Clean runs the full pipeline and returns a partial ReadResponse
// (Content + Metadata + Tokens filled; Timing is left to the API layer).
//
// Flow:
//  1. Estimate original tokens from raw HTML.
//  1b. Apply CSS selector / include/exclude tag filters (if provided).
//  2. Stage 1: the readability engine extracts the article.
//  3. Stage 2: convert to the requested output format.
//  4. Estimate cleaned tokens and compute savings.
//  5. Extract links and images from the original page.
//  6. Assemble and return the partial response.
//
// Extraction failure is surfaced as an error, never an empty success:
// a document with no article content yields ErrCodeExtraction.
func (c *Cleaner) Clean(rawHTML string, sourceURL string, format string, opts CleanOptions) (*models.ReadResponse, error) {
	// ── 1. Original token estimate ──────────────────────────────────
	originalTokens := EstimateTokens(rawHTML)

	// ── 1b. Content filtering ───────────────────────────────────────
	if opts.CSSSelector != "" {
		if filtered, err := ApplyCSSSelector(rawHTML, opts.CSSSelector); err == nil {
			rawHTML = filtered
		} else {
			return nil, models.NewReadError(models.ErrCodeInvalidInput, "invalid css selector", err)
		}
	}
	if len(opts.IncludeTags) > 0 || len(opts.ExcludeTags) > 0 {
		rawHTML = FilterContent(rawHTML, opts.IncludeTags, opts.ExcludeTags)
	}

	// ── 2. Stage 1: Content extraction ──────────────────────────────
	parserOpts := readability.Options{
		CharThreshold:     opts.CharThreshold,
		KeepClasses:       opts.KeepClasses,
		ClassesToPreserve: opts.ClassesToPreserve,
		MaxElemsToParse:   opts.MaxElemsToParse,
	}
	if opts.AllowedVideoRegex != "" {
		rx, err := regexp.Compile(opts.AllowedVideoRegex)
		if err != nil {
			return nil, models.NewReadError(models.ErrCodeInvalidInput, "invalid allowed_video_regex", err)
		}
		parserOpts.AllowedVideoRegex = rx
	}

	var pageURL *nurl.URL
	if sourceURL != "" {
		var err error
		pageURL, err = nurl.Parse(sourceURL)
		if err != nil {
			return nil, models.NewReadError(models.ErrCodeInvalidInput, "invalid source URL", err)
		}
	}

	article, err := readability.NewParser(parserOpts).Parse(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		if errors.Is(err, readability.ErrTooLarge) {
			return nil, models.NewReadError(models.ErrCodeTooLarge, "document too large", err)
		}
		return nil, models.NewReadError(models.ErrCodeExtraction, "content extraction failed", err)
	}

	// ── 3. Stage 2: Format conversion ───────────────────────────────
	var content string
	switch format {
	case "html":
		content = article.Content
	case "text":
		content = article.TextContent
	default:
		// "markdown" and anything unknown.
		content, err = ToMarkdown(c.mdConverter, article.Content, sourceURL)
		if err != nil {
			return nil, models.NewReadError(models.ErrCodeExtraction, "markdown conversion failed", err)
		}
		if opts.Citations {
			content = ConvertToCitations(content)
		}
	}

	// ── 4. Cleaned token estimate + savings ─────────────────────────
	cleanedTokens := EstimateTokens(content)

	savingsPercent := 0.0
	if originalTokens > 0 {
		savingsPercent = float64(originalTokens-cleanedTokens) / float64(originalTokens) * 100
		// Round to 2 decimal places.
		savingsPercent = math.Round(savingsPercent*100) / 100
	}

	// ── 5. Extract links and images from the original page ──────────
	links := ExtractLinks(rawHTML, sourceURL)
	images := ExtractImages(rawHTML, sourceURL)

	// ── 6. Assemble partial response ────────────────────────────────
	return &models.ReadResponse{
		Success: true,
		Content: content,
		Metadata: models.Metadata{
			Title:         article.Title,
			Byline:        article.Byline,
			Excerpt:       article.Excerpt,
			SiteName:      article.SiteName,
			Language:      article.Language,
			Dir:           article.Dir,
			PublishedTime: article.PublishedTime,
			SourceURL:     sourceURL,
		},
		Links:  links,
		Images: images,
		Tokens: models.TokenInfo{
			OriginalEstimate: originalTokens,
			CleanedEstimate:  cleanedTokens,
			SavingsPercent:   savingsPercent,
		},
		// Timing, StatusCode, FinalURL are left zero-valued.
		// The API handler layer fills them in.
	}, nil
}
