package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is the hosted LlamaParse parsing API.
const DefaultBaseURL = "https://api.cloud.llamaindex.ai/api/parsing"

var (
	ErrMissingAPIKey = errors.New("llamaparse: api key not configured")
	ErrJobTimeout    = errors.New("llamaparse: job did not finish in time")
)

// Document is one parsed document returned by the service.
type Document struct {
	Text string `json:"text"`
}

// Config configures the LlamaParse client.
type Config struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
	MaxPolls     int
	HTTPTimeout  time.Duration
}

// Client uploads a file to LlamaParse and waits for the markdown result.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 60
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		log:        log,
	}
}

// Parse uploads the file at path and returns the parsed documents. Each
// request is attempted once; polling a pending job is not retried on error.
func (c *Client) Parse(ctx context.Context, path string) ([]Document, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	start := time.Now()
	jobID, err := c.upload(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("llamaparse upload: %w", err)
	}
	c.log.Info("ocr.job.submitted", "job_id", jobID, "file", filepath.Base(path))

	markdown, err := c.waitForResult(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("llamaparse job %s: %w", jobID, err)
	}
	c.log.Info("ocr.job.done", "job_id", jobID, "chars", len(markdown), "duration_ms", time.Since(start).Milliseconds())

	if strings.TrimSpace(markdown) == "" {
		return nil, nil
	}
	return []Document{{Text: markdown}}, nil
}

func (c *Client) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.WriteField("result_type", "markdown"); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var job struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &job); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if job.ID == "" {
		return "", errors.New("upload response missing job id")
	}
	return job.ID, nil
}

func (c *Client) waitForResult(ctx context.Context, jobID string) (string, error) {
	url := fmt.Sprintf("%s/job/%s/result/markdown", c.cfg.BaseURL, jobID)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for range c.cfg.MaxPolls {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", err
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("read result: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var result struct {
				Markdown string `json:"markdown"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return "", fmt.Errorf("decode result: %w", err)
			}
			return result.Markdown, nil
		case http.StatusAccepted:
			continue
		default:
			return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
	}
	return "", ErrJobTimeout
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// StatusError is a non-success HTTP response from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, body)
}
