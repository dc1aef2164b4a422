package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// readRequest mirrors the Readable API request model.
type readRequest struct {
	URL          string `json:"url,omitempty"`
	HTML         string `json:"html,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
	Citations    bool   `json:"citations,omitempty"`
}

// readResponse mirrors the Readable API response model.
type readResponse struct {
	Success  bool   `json:"success"`
	Content  string `json:"content"`
	Metadata *struct {
		Title         string `json:"title"`
		Byline        string `json:"byline"`
		Excerpt       string `json:"excerpt"`
		SiteName      string `json:"site_name"`
		PublishedTime string `json:"published_time"`
		SourceURL     string `json:"source_url"`
	} `json:"metadata"`
	Tokens *struct {
		OriginalEstimate int     `json:"original_estimate"`
		CleanedEstimate  int     `json:"cleaned_estimate"`
		SavingsPercent   float64 `json:"savings_percent"`
	} `json:"tokens"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// batchResponse mirrors the Readable batch API response.
type batchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// batchStatusResponse mirrors the Readable batch status API response.
type batchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Results   []json.RawMessage `json:"results"`
}

func main() {
	apiURL := os.Getenv("READABLE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("READABLE_API_KEY")

	s := server.NewMCPServer(
		"readable",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	readPageTool := mcp.NewTool("read_page",
		mcp.WithDescription("Fetch a web page and return the main article content with navigation, ads and boilerplate removed."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to read"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'markdown' (default), 'text' (plain text), or 'html'"),
			mcp.Enum("markdown", "text", "html"),
		),
		mcp.WithBoolean("citations",
			mcp.Description("Rewrite inline markdown links as numbered reference-style citations"),
		),
	)
	s.AddTool(readPageTool, handleReadPage(apiURL, apiKey))

	readHTMLTool := mcp.NewTool("read_html",
		mcp.WithDescription("Extract the main article content from an HTML document supplied inline, without fetching anything."),
		mcp.WithString("html",
			mcp.Required(),
			mcp.Description("The HTML document to read"),
		),
		mcp.WithString("source_url",
			mcp.Description("Base URL used to resolve relative links in the document"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'markdown' (default), 'text', or 'html'"),
			mcp.Enum("markdown", "text", "html"),
		),
	)
	s.AddTool(readHTMLTool, handleReadHTML(apiURL, apiKey))

	batchReadTool := mcp.NewTool("batch_read",
		mcp.WithDescription("Read multiple URLs in parallel and return the cleaned article content for each."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to read"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'markdown' (default), 'text', or 'html'"),
			mcp.Enum("markdown", "text", "html"),
		),
	)
	s.AddTool(batchReadTool, handleBatchRead(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Readable API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			if apiKey != "" {
				req.Header.Set("X-API-Key", apiKey)
			}

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

// formatReadResult renders a read response as a text block with a
// metadata header and a token footer.
func formatReadResult(rr *readResponse) string {
	var sb strings.Builder
	if rr.Metadata != nil {
		m := rr.Metadata
		sb.WriteString("Title: " + m.Title + "\n")
		if m.Byline != "" {
			sb.WriteString("Byline: " + m.Byline + "\n")
		}
		if m.SourceURL != "" {
			sb.WriteString("Source: " + m.SourceURL + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(rr.Content)

	if rr.Tokens != nil {
		t := rr.Tokens
		sb.WriteString(fmt.Sprintf("\n\n---\nTokens: %d (saved %.0f%% from original %d)",
			t.CleanedEstimate, t.SavingsPercent, t.OriginalEstimate))
	}
	return sb.String()
}

func doRead(ctx context.Context, client *http.Client, apiURL, apiKey string, payload readRequest) (*mcp.CallToolResult, error) {
	respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/read", payload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read request failed: %v", err)), nil
	}

	var rr readResponse
	if err := json.Unmarshal(respBody, &rr); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
	}

	if !rr.Success {
		errMsg := "read failed"
		if rr.Error != nil {
			errMsg = fmt.Sprintf("[%s] %s", rr.Error.Code, rr.Error.Message)
		}
		return mcp.NewToolResultError(errMsg), nil
	}

	return mcp.NewToolResultText(formatReadResult(&rr)), nil
}

func handleReadPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		return doRead(ctx, client, apiURL, apiKey, readRequest{
			URL:          url,
			OutputFormat: request.GetString("output_format", ""),
			Citations:    request.GetBool("citations", false),
		})
	}
}

func handleReadHTML(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		htmlDoc, err := request.RequireString("html")
		if err != nil {
			return mcp.NewToolResultError("html is required"), nil
		}

		return doRead(ctx, client, apiURL, apiKey, readRequest{
			HTML:         htmlDoc,
			SourceURL:    request.GetString("source_url", ""),
			OutputFormat: request.GetString("output_format", ""),
		})
	}
}

func handleBatchRead(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		payload := map[string]interface{}{
			"urls": urls,
			"options": map[string]interface{}{
				"output_format": request.GetString("output_format", ""),
			},
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/batch/read", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		var batchResp batchResponse
		if err := json.Unmarshal(respBody, &batchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch response: %v", err)), nil
		}

		if batchResp.ID == "" {
			return mcp.NewToolResultError("batch job creation failed"), nil
		}

		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/batch/"+batchResp.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}

		var statusResp batchStatusResponse
		if err := json.Unmarshal(resultBody, &statusResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch status: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Batch %s: %s (%d/%d completed)\n\n", statusResp.ID, statusResp.Status, statusResp.Completed, statusResp.Total))

		for i, raw := range statusResp.Results {
			var rr readResponse
			if err := json.Unmarshal(raw, &rr); err != nil {
				sb.WriteString(fmt.Sprintf("--- Result %d: parse error ---\n\n", i+1))
				continue
			}
			if rr.Success {
				title := ""
				if rr.Metadata != nil {
					title = rr.Metadata.Title
				}
				sb.WriteString(fmt.Sprintf("--- [%d] %s ---\n%s\n\n", i+1, title, rr.Content))
			} else {
				errMsg := "unknown error"
				if rr.Error != nil {
					errMsg = rr.Error.Message
				}
				sb.WriteString(fmt.Sprintf("--- [%d] FAILED: %s ---\n\n", i+1, errMsg))
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
