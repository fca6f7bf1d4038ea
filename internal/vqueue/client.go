package vqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Enqueuer creates queue entries.
type Enqueuer interface {
	Enqueue(ctx context.Context, reg Registration) (TurnSnapshot, error)
}

// TurnFetcher reads the current status of an existing turn.
type TurnFetcher interface {
	FetchStatus(ctx context.Context, code string) (TurnStatus, error)
}

// Ensure Client implements both interfaces at compile time.
var (
	_ Enqueuer    = (*Client)(nil)
	_ TurnFetcher = (*Client)(nil)
)

const (
	// DefaultBaseURL is the public virtual-queue API.
	DefaultBaseURL = "https://filavirtual2.debmedia.com/api/v1"

	defaultUserAgent = "queuecall/0.1"
	tokenHeader      = "x-api-token"
	requestIDHeader  = "X-Request-ID"
	maxResponseBytes = 1 << 20
)

// Options configure a Client.
type Options struct {
	BaseURL  string
	Token    string
	QueueID  string
	BranchID string
	// Timeout bounds each request; zero leaves the transport defaults in place.
	Timeout time.Duration
	// Transport is wrapped with OpenTelemetry instrumentation. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the virtual-queue HTTP API. It holds no turn state.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	queueID   string
	branchID  string
	userAgent string
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		token:     strings.TrimSpace(opts.Token),
		queueID:   strings.TrimSpace(opts.QueueID),
		branchID:  strings.TrimSpace(opts.BranchID),
		userAgent: defaultUserAgent,
	}, nil
}

// Enqueue registers a visitor and returns the issued turn. The registration is
// sent as given; callers validate it first.
func (c *Client) Enqueue(ctx context.Context, reg Registration) (TurnSnapshot, error) {
	if c == nil {
		return TurnSnapshot{}, fmt.Errorf("%w: client is nil", ErrEnqueueFailed)
	}
	endpoint := c.baseURL.JoinPath("queue", url.PathEscape(c.queueID), "branch", url.PathEscape(c.branchID), "enqueue")
	data, err := c.do(ctx, http.MethodPost, endpoint, reg)
	if err != nil {
		return TurnSnapshot{}, fmt.Errorf("%w: %w", ErrEnqueueFailed, err)
	}

	var payload enqueueResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return TurnSnapshot{}, fmt.Errorf("%w: %w: decode response: %w", ErrEnqueueFailed, ErrMalformedResponse, err)
	}
	snap, err := payload.snapshot()
	if err != nil {
		return TurnSnapshot{}, fmt.Errorf("%w: %w: %w", ErrEnqueueFailed, ErrMalformedResponse, err)
	}
	return snap, nil
}

// FetchStatus retrieves the current status of the turn identified by code.
func (c *Client) FetchStatus(ctx context.Context, code string) (TurnStatus, error) {
	if c == nil {
		return TurnStatus{}, fmt.Errorf("%w: client is nil", ErrPollFailed)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return TurnStatus{}, fmt.Errorf("%w: turn code required", ErrPollFailed)
	}
	endpoint := c.baseURL.JoinPath("turn", "code", url.PathEscape(code))
	data, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return TurnStatus{}, fmt.Errorf("%w: %w", ErrPollFailed, err)
	}

	var payload statusResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return TurnStatus{}, fmt.Errorf("%w: decode response: %w", ErrPollFailed, err)
	}
	return payload.turnStatus(), nil
}

func (c *Client) do(ctx context.Context, method string, endpoint *url.URL, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, uuid.NewString())
	if c.token != "" {
		req.Header.Set(tokenHeader, c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Path: endpoint.Path, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
