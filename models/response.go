package models

// ReadResponse is the response for POST /api/v1/read.
type ReadResponse struct {
	// Success indicates whether extraction completed without errors.
	Success bool `json:"success"`

	// StatusCode is the HTTP status code from the fetched page.
	// Zero when the document was supplied inline.
	StatusCode int `json:"status_code,omitempty"`

	// FinalURL is the URL after following all redirects.
	FinalURL string `json:"final_url,omitempty"`

	// Content is the extracted article in the requested format.
	Content string `json:"content"`

	// Metadata contains the article metadata record.
	Metadata Metadata `json:"metadata"`

	// Links contains internal and external links from the original page.
	Links LinksResult `json:"links"`

	// Images contains image src and alt text from the original page.
	Images []Image `json:"images"`

	// Tokens provides token estimates before and after extraction.
	Tokens TokenInfo `json:"tokens"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// LinksResult separates extracted links into internal and external groups.
type LinksResult struct {
	Internal []Link `json:"internal"`
	External []Link `json:"external"`
}

// Link represents a hyperlink extracted from the page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text,omitempty"`
}

// Image represents an image element extracted from the page.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Metadata is the article metadata record. Every field is optional;
// absent values serialize as empty strings or are omitted.
type Metadata struct {
	Title         string `json:"title"`
	Byline        string `json:"byline,omitempty"`
	Excerpt       string `json:"excerpt,omitempty"`
	SiteName      string `json:"site_name,omitempty"`
	Language      string `json:"language,omitempty"`
	Dir           string `json:"dir,omitempty"`
	PublishedTime string `json:"published_time,omitempty"`
	SourceURL     string `json:"source_url,omitempty"`
}

// TokenInfo provides before/after token estimates to show extraction efficacy.
type TokenInfo struct {
	// OriginalEstimate is the estimated token count of the raw HTML.
	OriginalEstimate int `json:"original_estimate"`

	// CleanedEstimate is the estimated token count of the extracted output.
	CleanedEstimate int `json:"cleaned_estimate"`

	// SavingsPercent is the percentage of tokens removed (0-100).
	SavingsPercent float64 `json:"savings_percent"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent fetching the page. Zero for inline HTML.
	FetchMs int64 `json:"fetch_ms"`

	// ExtractionMs is the time spent extracting and formatting content.
	ExtractionMs int64 `json:"extraction_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // always "healthy"; the service is stateless
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
