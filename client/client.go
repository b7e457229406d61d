package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sbai-works/drawctl/iox"
	"github.com/sbai-works/drawctl/metrics"
	"github.com/sbai-works/drawctl/types"
)

// DefaultTimeout is the default per-request timeout. The original frontend
// enforced none and an unresponsive backend blocked its UI indefinitely;
// a bounded timeout closes that gap without changing call semantics.
const DefaultTimeout = 30 * time.Second

// Config configures the API client. BaseURL is resolved once at startup
// and passed in explicitly; nothing here is read from ambient state.
type Config struct {
	// BaseURL is the backend base path, e.g. "http://localhost:8000/api" (required).
	BaseURL string
	// Timeout is the per-request timeout (default 30s; 0 keeps the default,
	// negative disables).
	Timeout time.Duration
}

// Client issues single HTTP requests against the backend. Every call
// performs exactly one request with no built-in retry; retry policy, when
// wanted, is layered on by the caller (see the resilience package).
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Collector
}

// New creates a client from the given config.
// Returns an error if the base URL is empty or unparsable.
func New(cfg Config, collector *metrics.Collector) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("client requires a base URL")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		timeout = 0
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		metrics: collector,
	}, nil
}

// Upload sends one file as a multipart POST /upload.
// Non-2xx responses are decoded for a detail message and surfaced as
// *UploadRejectedError; transport failures become *NetworkError.
func (c *Client) Upload(ctx context.Context, path string) (*types.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer iox.DiscardClose(f)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("multipart form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.metrics.IncUploadStarted()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.IncUploadFailed()
		return nil, &NetworkError{Surface: SurfaceUpload, Err: err}
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.IncUploadFailed()
		return nil, decodeUploadReject(resp)
	}

	var result types.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.metrics.IncUploadFailed()
		return nil, &NetworkError{Surface: SurfaceUpload, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.metrics.IncUploadCompleted()
	return &result, nil
}

// decodeUploadReject extracts the {detail} message from a non-2xx upload
// response. A missing or undecodable body still yields a rejection error
// with the status code.
func decodeUploadReject(resp *http.Response) error {
	rejected := &UploadRejectedError{Code: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		rejected.Detail = body.Detail
	}
	return rejected
}

// GetResults fetches the result document for a session.
// Any non-2xx response is surfaced as ErrSessionNotFound: the API exposes
// no finer-grained branching on this path.
func (c *Client) GetResults(ctx context.Context, sessionID string) (*types.ResultDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/results/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Surface: SurfaceResults, Err: err}
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drain(resp.Body)
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}

	var doc types.ResultDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &NetworkError{Surface: SurfaceResults, Err: fmt.Errorf("decode document: %w", err)}
	}
	return &doc, nil
}

// ListSessions fetches the server-side session history.
func (c *Client) ListSessions(ctx context.Context) ([]types.UploadSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sessions", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Surface: SurfaceSessions, Err: err}
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drain(resp.Body)
		return nil, &StatusError{Surface: SurfaceSessions, Code: resp.StatusCode}
	}

	var body struct {
		Sessions []types.UploadSession `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &NetworkError{Surface: SurfaceSessions, Err: fmt.Errorf("decode sessions: %w", err)}
	}
	return body.Sessions, nil
}

// Chat sends one free-text question bound to a session id.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*types.ChatReply, error) {
	payload, err := json.Marshal(map[string]string{
		"session_id": sessionID,
		"message":    message,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.metrics.IncChatSend()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Surface: SurfaceChat, Err: err}
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drain(resp.Body)
		return nil, &StatusError{Surface: SurfaceChat, Code: resp.StatusCode}
	}

	var reply types.ChatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, &NetworkError{Surface: SurfaceChat, Err: fmt.Errorf("decode reply: %w", err)}
	}
	return &reply, nil
}

// Download streams session artifacts to w. With an empty fileName it
// fetches the all-artifacts archive; otherwise the single named artifact.
// Returns the number of bytes written.
func (c *Client) Download(ctx context.Context, sessionID, fileName string, w io.Writer) (int64, error) {
	target := c.baseURL + "/download/" + url.PathEscape(sessionID)
	if fileName != "" {
		target += "/" + url.PathEscape(fileName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &NetworkError{Surface: SurfaceDownload, Err: err}
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		drain(resp.Body)
		return 0, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drain(resp.Body)
		return 0, &StatusError{Surface: SurfaceDownload, Code: resp.StatusCode}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &NetworkError{Surface: SurfaceDownload, Err: err}
	}
	return n, nil
}

// drain consumes the remaining body to allow connection reuse.
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, r)
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
