package models

import "sync"

// BatchRequest is the payload for POST /api/v1/batch/read.
type BatchRequest struct {
	// URLs is the list of target pages to read. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=100"`

	// Options contains shared read options applied to all URLs.
	Options BatchOptions `json:"options"`

	// WebhookURL receives a batch.completed event when the job finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret, when set, signs the delivered event body with
	// HMAC-SHA256 so the receiver can verify its origin.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchOptions are the shared settings applied to every URL in a batch.
type BatchOptions struct {
	OutputFormat  string `json:"output_format,omitempty" binding:"omitempty,oneof=markdown html text"`
	Timeout       int    `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`
	CharThreshold int    `json:"char_threshold,omitempty" binding:"omitempty,min=1"`
}

// BatchResponse is the immediate response for POST /api/v1/batch/read.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Results   []*ReadResponse `json:"results,omitempty"`
}

// BatchJob tracks an in-progress batch read operation.
// The mutex guards Status, Completed and Results, which the worker
// goroutines write while status requests read.
type BatchJob struct {
	sync.Mutex

	ID            string
	Status        string // "processing", "completed", "failed", "partial"
	Total         int
	Completed     int
	Results       []*ReadResponse
	Webhook       string
	WebhookSecret string
	CreatedAt     int64 // unix timestamp
}
