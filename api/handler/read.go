package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/readable/cache"
	"github.com/use-agent/readable/cleaner"
	"github.com/use-agent/readable/config"
	"github.com/use-agent/readable/fetch"
	"github.com/use-agent/readable/models"
)

// Handler bundles the dependencies shared across API endpoints.
type Handler struct {
	Cfg     *config.Config
	Fetcher *fetch.Fetcher
	Cleaner *cleaner.Cleaner
	Cache   *cache.Cache
}

// PostRead handles POST /api/v1/read.
//
// Flow:
//  1. Parse and validate the request.
//  2. Cache lookup (URL requests with max_age only).
//  3. Obtain HTML: fetch the URL, or take the inline document.
//  4. Run the cleaning pipeline.
//  5. Fill response envelope (timing, status, final URL) and cache it.
func (h *Handler) PostRead(c *gin.Context) {
	start := time.Now()

	// ── 1. Parse + validate ─────────────────────────────────────────
	var req models.ReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewReadError(models.ErrCodeInvalidInput, "invalid request body: "+err.Error(), err))
		return
	}
	if (req.URL == "") == (req.HTML == "") {
		respondError(c, models.NewReadError(models.ErrCodeInvalidInput, "exactly one of url and html must be provided", nil))
		return
	}
	req.Defaults()
	if req.CharThreshold == 0 {
		req.CharThreshold = h.Cfg.Reader.CharThreshold
	}

	// ── 2. Cache lookup ─────────────────────────────────────────────
	var cacheKey string
	if req.URL != "" && req.MaxAge > 0 {
		cacheKey = cache.Key(req.URL, req.OutputFormat)
		if cached, hit := h.Cache.Get(cacheKey, req.MaxAge); hit {
			out := *cached
			out.CacheStatus = "hit"
			out.Timing.TotalMs = time.Since(start).Milliseconds()
			slog.Info("read served from cache", "url", req.URL)
			c.JSON(http.StatusOK, &out)
			return
		}
	}

	// ── 3. Obtain HTML ──────────────────────────────────────────────
	var (
		rawHTML    string
		sourceURL  string
		statusCode int
		finalURL   string
		fetchTitle string
		fetchMs    int64
	)
	if req.URL != "" {
		timeout := time.Duration(req.Timeout) * time.Second
		if timeout > h.Cfg.Fetch.MaxTimeout {
			timeout = h.Cfg.Fetch.MaxTimeout
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		fetchStart := time.Now()
		result, err := h.Fetcher.Fetch(ctx, req.URL)
		fetchMs = time.Since(fetchStart).Milliseconds()
		if err != nil {
			code := models.ErrCodeFetch
			if errors.Is(err, context.DeadlineExceeded) {
				code = models.ErrCodeTimeout
			}
			respondError(c, models.NewReadError(code, "failed to fetch page", err))
			return
		}
		rawHTML = result.HTML
		sourceURL = result.FinalURL
		statusCode = result.StatusCode
		finalURL = result.FinalURL
		fetchTitle = result.Title
	} else {
		rawHTML = req.HTML
		sourceURL = req.SourceURL
	}

	// ── 4. Clean ────────────────────────────────────────────────────
	extractStart := time.Now()
	resp, err := h.Cleaner.Clean(rawHTML, sourceURL, req.OutputFormat, cleaner.CleanOptions{
		IncludeTags:       req.IncludeTags,
		ExcludeTags:       req.ExcludeTags,
		CSSSelector:       req.CSSSelector,
		CharThreshold:     req.CharThreshold,
		KeepClasses:       req.KeepClasses,
		ClassesToPreserve: req.ClassesToPreserve,
		AllowedVideoRegex: req.AllowedVideoRegex,
		MaxElemsToParse:   h.Cfg.Reader.MaxElemsToParse,
		Citations:         req.Citations,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// ── 5. Fill envelope + cache ────────────────────────────────────
	if resp.Metadata.Title == "" {
		resp.Metadata.Title = fetchTitle
	}
	resp.StatusCode = statusCode
	resp.FinalURL = finalURL
	resp.Timing = models.TimingInfo{
		TotalMs:      time.Since(start).Milliseconds(),
		FetchMs:      fetchMs,
		ExtractionMs: time.Since(extractStart).Milliseconds(),
	}
	if cacheKey != "" {
		resp.CacheStatus = "miss"
		h.Cache.Set(cacheKey, resp)
	}

	slog.Info("read completed",
		"url", req.URL,
		"format", req.OutputFormat,
		"total_ms", resp.Timing.TotalMs,
		"savings_percent", resp.Tokens.SavingsPercent,
	)
	c.JSON(http.StatusOK, resp)
}

// respondError maps an internal error to an HTTP status and a structured
// error body. Unknown errors are reported as INTERNAL_ERROR.
func respondError(c *gin.Context, err error) {
	var readErr *models.ReadError
	if !errors.As(err, &readErr) {
		readErr = models.NewReadError(models.ErrCodeInternal, "internal error", err)
	}

	status := http.StatusInternalServerError
	switch readErr.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeTooLarge:
		status = http.StatusBadRequest
	case models.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case models.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case models.ErrCodeFetch:
		status = http.StatusBadGateway
	case models.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	case models.ErrCodeExtraction:
		status = http.StatusUnprocessableEntity
	}

	slog.Warn("request failed", "code", readErr.Code, "error", readErr.Error())
	c.JSON(status, models.ReadResponse{
		Success: false,
		Error:   readErr.ToDetail(),
	})
}
