package readability

import "regexp"

// Compiled once at init and shared read-only across all parser runs.
// The class/id patterns are the tuned heuristics behind candidate
// selection; changing them changes extraction quality, so they are
// deliberately kept as package-level named values rather than inlined.
var (
	// rxUnlikelyCandidates matches class/id values of elements that are
	// almost never article content (comment threads, footers, social
	// widgets, pagination chrome, ...).
	rxUnlikelyCandidates = regexp.MustCompile(`(?i)-ad-|ai2html|banner|breadcrumbs|combx|comment|community|cover-wrap|disqus|extra|footer|gdpr|header|legends|menu|related|remark|replies|rss|shoutbox|sidebar|skyscraper|social|sponsor|supplemental|ad-break|agegate|pagination|pager|popup|yom-remote`)

	// rxMaybeCandidate is the allow-list that rescues a node from the
	// unlikely pattern: when both match, we fail open and keep the node.
	rxMaybeCandidate = regexp.MustCompile(`(?i)and|article|body|column|content|main|shadow`)

	// rxPositive and rxNegative drive the ±25 class weight adjustment
	// when the WeightClasses flag is active, and the conditional
	// cleaning decisions in the sanitizer.
	rxPositive = regexp.MustCompile(`(?i)article|body|content|entry|hentry|h-entry|main|page|pagination|post|text|blog|story`)
	rxNegative = regexp.MustCompile(`(?i)-ad-|hidden|^hid$|\bhid\b|banner|combx|comment|com-|contact|foot|footer|footnote|gdpr|masthead|media|meta|outbrain|promo|related|scroll|share|shoutbox|sidebar|skyscraper|sponsor|shopping|tags|tool|widget`)

	// rxByline matches class/id/rel values that typically wrap an author
	// credit line.
	rxByline = regexp.MustCompile(`(?i)byline|author|dateline|writtenby|p-author`)

	// rxDefaultVideos is the default allow-list for iframe/embed sources.
	// Callers replace it wholesale via Options.AllowedVideoRegex.
	rxDefaultVideos = regexp.MustCompile(`(?i)//(www\.)?((dailymotion|youtube|youtube-nocookie|player\.vimeo|v\.qq)\.com|(archive|upload)\.org|player\.twitch\.tv)`)

	// rxTitleSeparators splits a page <title> into site-name / headline
	// segments during title de-duplication.
	rxTitleSeparators = regexp.MustCompile(` [|\-\\/>»—–] `)

	// rxNormalizeSpaces collapses whitespace runs in extracted text.
	rxNormalizeSpaces = regexp.MustCompile(`\s{2,}`)

	// rxDisplayNone is the only CSS the engine interprets: inline styles
	// that hide an element outright.
	rxDisplayNone = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden`)
)

// blockTags are elements whose presence inside a <div> prevents the
// div-to-paragraph conversion in the preprocessor.
var blockTags = map[string]bool{
	"a": true, "blockquote": true, "dl": true, "div": true, "img": true,
	"ol": true, "p": true, "pre": true, "table": true, "ul": true,
	"address": true, "article": true, "aside": true, "fieldset": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "main": true, "nav": true, "section": true,
}

// scoreableTags are the paragraph-like containers eligible for a base
// content score.
var scoreableTags = map[string]bool{
	"p": true, "td": true, "pre": true,
}

// tagScoreAdjustment gives structural tags a head start (or handicap)
// when their score map entry is first initialised.
var tagScoreAdjustment = map[string]float64{
	"div":        5,
	"article":    5,
	"section":    5,
	"main":       5,
	"pre":        3,
	"td":         3,
	"blockquote": 3,
	"address":    -3,
	"ol":         -3,
	"ul":         -3,
	"dl":         -3,
	"dd":         -3,
	"dt":         -3,
	"li":         -3,
	"form":       -3,
	"h1":         -5,
	"h2":         -5,
	"h3":         -5,
	"h4":         -5,
	"h5":         -5,
	"h6":         -5,
	"th":         -5,
}
