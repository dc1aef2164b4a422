package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/readable/cleaner"
	"github.com/use-agent/readable/models"
	"github.com/use-agent/readable/webhook"
)

// batchConcurrency caps how many URLs a batch job fetches in parallel.
const batchConcurrency = 5

// batchTTL is how long finished jobs stay queryable.
const batchTTL = 1 * time.Hour

// batchStore keeps in-flight and recently finished jobs.
// Stateless otherwise: jobs are lost on restart, which the webhook
// delivery compensates for.
var (
	batchStore   sync.Map // job ID -> *models.BatchJob
	batchJanitor sync.Once
)

func startBatchJanitor() {
	batchJanitor.Do(func() {
		go func() {
			ticker := time.NewTicker(10 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				cutoff := time.Now().Add(-batchTTL).Unix()
				batchStore.Range(func(key, value any) bool {
					job := value.(*models.BatchJob)
					job.Lock()
					expired := job.CreatedAt < cutoff && job.Status != "processing"
					job.Unlock()
					if expired {
						batchStore.Delete(key)
					}
					return true
				})
			}
		}()
	})
}

// newJobID generates a random 16-hex-char job identifier.
func newJobID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// PostBatch handles POST /api/v1/batch/read.
// The job is accepted immediately and processed in the background;
// poll GET /api/v1/batch/:id or register a webhook_url for completion.
func (h *Handler) PostBatch(c *gin.Context) {
	startBatchJanitor()

	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.NewReadError(models.ErrCodeInvalidInput, "invalid request body: "+err.Error(), err))
		return
	}

	job := &models.BatchJob{
		ID:            newJobID(),
		Status:        "processing",
		Total:         len(req.URLs),
		Results:       make([]*models.ReadResponse, len(req.URLs)),
		Webhook:       req.WebhookURL,
		WebhookSecret: req.WebhookSecret,
		CreatedAt:     time.Now().Unix(),
	}
	batchStore.Store(job.ID, job)

	// Build the response before the workers start touching the job.
	accepted := models.BatchResponse{
		ID:     job.ID,
		Status: job.Status,
		Total:  job.Total,
	}
	go h.runBatch(job, req)

	slog.Info("batch accepted", "job_id", job.ID, "total", job.Total)
	c.JSON(http.StatusAccepted, accepted)
}

// GetBatch handles GET /api/v1/batch/:id.
func (h *Handler) GetBatch(c *gin.Context) {
	id := c.Param("id")
	value, ok := batchStore.Load(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ReadResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "batch job not found: " + id,
			},
		})
		return
	}

	job := value.(*models.BatchJob)
	job.Lock()
	resp := models.BatchStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Completed: job.Completed,
		Total:     job.Total,
	}
	if job.Status != "processing" {
		resp.Results = job.Results
	}
	job.Unlock()
	c.JSON(http.StatusOK, resp)
}

// runBatch processes all URLs with bounded concurrency, updates job
// progress, and fires the completion webhook when done.
func (h *Handler) runBatch(job *models.BatchJob, req models.BatchRequest) {
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, batchConcurrency)
	)

	for i, url := range req.URLs {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, target string) {
			defer wg.Done()
			defer func() { <-sem }()

			result := h.readOne(target, req.Options)

			job.Lock()
			job.Results[idx] = result
			job.Completed++
			job.Unlock()
		}(i, url)
	}
	wg.Wait()

	job.Lock()
	succeeded := 0
	for _, r := range job.Results {
		if r != nil && r.Success {
			succeeded++
		}
	}
	switch {
	case succeeded == job.Total:
		job.Status = "completed"
	case succeeded == 0:
		job.Status = "failed"
	default:
		job.Status = "partial"
	}
	status := models.BatchStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Completed: job.Completed,
		Total:     job.Total,
	}
	job.Unlock()

	slog.Info("batch finished",
		"job_id", job.ID,
		"status", status.Status,
		"succeeded", succeeded,
		"total", status.Total,
	)

	if job.Webhook != "" {
		webhook.DeliverAsync(job.Webhook, job.WebhookSecret, &webhook.Event{
			Type:      "batch." + status.Status,
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data:      status,
		})
	}
}

// readOne fetches and cleans a single batch URL. Errors become failed
// per-URL results rather than failing the whole job.
func (h *Handler) readOne(url string, opts models.BatchOptions) *models.ReadResponse {
	start := time.Now()

	timeout := 30 * time.Second
	if opts.Timeout > 0 {
		timeout = time.Duration(opts.Timeout) * time.Second
	}
	if timeout > h.Cfg.Fetch.MaxTimeout {
		timeout = h.Cfg.Fetch.MaxTimeout
	}

	format := opts.OutputFormat
	if format == "" {
		format = "markdown"
	}
	charThreshold := opts.CharThreshold
	if charThreshold == 0 {
		charThreshold = h.Cfg.Reader.CharThreshold
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fetchStart := time.Now()
	result, err := h.Fetcher.Fetch(ctx, url)
	fetchMs := time.Since(fetchStart).Milliseconds()
	if err != nil {
		code := models.ErrCodeFetch
		if errors.Is(err, context.DeadlineExceeded) {
			code = models.ErrCodeTimeout
		}
		return &models.ReadResponse{
			Success:  false,
			FinalURL: url,
			Error:    models.NewReadError(code, "failed to fetch page", err).ToDetail(),
		}
	}

	extractStart := time.Now()
	resp, err := h.Cleaner.Clean(result.HTML, result.FinalURL, format, cleaner.CleanOptions{
		CharThreshold:   charThreshold,
		MaxElemsToParse: h.Cfg.Reader.MaxElemsToParse,
	})
	if err != nil {
		var readErr *models.ReadError
		if !errors.As(err, &readErr) {
			readErr = models.NewReadError(models.ErrCodeInternal, "internal error", err)
		}
		return &models.ReadResponse{
			Success:  false,
			FinalURL: result.FinalURL,
			Error:    readErr.ToDetail(),
		}
	}

	if resp.Metadata.Title == "" {
		resp.Metadata.Title = result.Title
	}
	resp.StatusCode = result.StatusCode
	resp.FinalURL = result.FinalURL
	resp.Timing = models.TimingInfo{
		TotalMs:      time.Since(start).Milliseconds(),
		FetchMs:      fetchMs,
		ExtractionMs: time.Since(extractStart).Milliseconds(),
	}
	return resp
}
