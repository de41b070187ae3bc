// Package extractor is the client for the extraction REST collaborator. It
// owns the HTTP plumbing, timeouts and transient-retry policy so the
// ingestion orchestrator never sees a raw network error.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"

	"github.com/ledgerline/ingest-cli/internal/model"
	"github.com/ledgerline/ingest-cli/internal/resilience"
)

// RequestError is a non-2xx response from the backend. Message is safe to
// show to a user.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("extraction backend returned %d: %s", e.StatusCode, e.Message)
}

// ExtractRequest is the body for POST /api/ai/extract/document. Exactly one
// of Text or FileDataURL is set.
type ExtractRequest struct {
	Text        string             `json:"text,omitempty"`
	FileDataURL string             `json:"file_data_url,omitempty"`
	Type        model.DocumentKind `json:"type"`
	Locale      string             `json:"locale,omitempty"`
}

// Config configures the client.
type Config struct {
	BaseURL    string
	APIToken   string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the extraction backend.
type Client struct {
	cfg   Config
	http  *http.Client
	retry resilience.RetryConfig
}

// New creates a client with a 30s default timeout.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	retry := resilience.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}
	retry.OnRetry = resilience.RetryLogger("backend", "request")
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		retry: retry,
	}
}

// ExtractDocument submits raw document text or a file data URL for field
// extraction. The locale is validated and normalized to a BCP 47 tag;
// invalid tags fall back to "en".
func (c *Client) ExtractDocument(ctx context.Context, req ExtractRequest) (*model.ExtractionResult, error) {
	if req.Text == "" && req.FileDataURL == "" {
		return nil, eris.New("extractor: empty document")
	}
	if tag, err := language.Parse(req.Locale); err != nil {
		req.Locale = "en"
	} else {
		req.Locale = tag.String()
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*model.ExtractionResult, error) {
		var result model.ExtractionResult
		if err := c.do(ctx, http.MethodPost, "/api/ai/extract/document", req, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
}

// SendFeedback records one feedback event. Callers treat this as
// fire-and-forget: no retries, and failures must be swallowed upstream.
func (c *Client) SendFeedback(ctx context.Context, fb model.Feedback) error {
	return resilience.Do(ctx, resilience.NoRetry(), func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, "/api/ai/feedback", fb, nil)
	})
}

// ListContacts fetches the known contact/vendor list.
func (c *Client) ListContacts(ctx context.Context) ([]model.Contact, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]model.Contact, error) {
		var out []model.Contact
		if err := c.do(ctx, http.MethodGet, "/api/contacts", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// do issues one request and decodes the JSON response into out when non-nil.
// Transient statuses are wrapped so the retry layer can recognize them.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "extractor: marshal request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return eris.Wrap(err, "extractor: build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "extractor: %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		reqErr := &RequestError{StatusCode: resp.StatusCode, Message: msg}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(reqErr, resp.StatusCode)
		}
		return reqErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "extractor: decode %s response", path)
	}
	return nil
}

// readErrorMessage pulls a {"error": "..."} body when present, otherwise
// returns the raw (truncated) body text.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "request failed"
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(raw)
}
