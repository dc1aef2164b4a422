package models

// ReadRequest is the payload for POST /api/v1/read.
// Exactly one of URL and HTML must be set.
type ReadRequest struct {
	// URL is the target page to fetch and read.
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	// HTML is an inline document to read instead of fetching a URL.
	// SourceURL should be set alongside it for link resolution.
	HTML string `json:"html,omitempty"`

	// SourceURL is the base URI used to resolve relative links when
	// HTML is supplied inline.
	SourceURL string `json:"source_url,omitempty" binding:"omitempty,url"`

	// OutputFormat controls the response content format.
	// Allowed: "markdown" (default), "html", "text".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=markdown html text"`

	// Timeout is the maximum duration in seconds for fetching the page.
	// Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// CSSSelector is an optional CSS selector to filter HTML before extraction.
	// When set, only the matched elements' outer HTML enters the pipeline.
	CSSSelector string `json:"css_selector,omitempty"`

	// IncludeTags/ExcludeTags are CSS selectors applied before extraction.
	IncludeTags []string `json:"include_tags,omitempty"`
	ExcludeTags []string `json:"exclude_tags,omitempty"`

	// CharThreshold overrides the extractor's acceptance threshold.
	// 0 keeps the default (500).
	CharThreshold int `json:"char_threshold,omitempty" binding:"omitempty,min=1"`

	// KeepClasses retains original class attributes in HTML output.
	KeepClasses bool `json:"keep_classes,omitempty"`

	// ClassesToPreserve lists class names kept even when KeepClasses is off.
	ClassesToPreserve []string `json:"classes_to_preserve,omitempty"`

	// AllowedVideoRegex replaces the default video-embed allow pattern.
	AllowedVideoRegex string `json:"allowed_video_regex,omitempty"`

	// Citations rewrites inline markdown links as reference-style
	// citations. Only meaningful with markdown output.
	Citations bool `json:"citations,omitempty"`

	// MaxAge enables cache lookups: serve a cached response younger
	// than this many milliseconds. 0 disables caching.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ReadRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
	if r.OutputFormat == "" {
		r.OutputFormat = "markdown"
	}
}
