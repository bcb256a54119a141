// Package token fetches media-session credentials from the broadcast backend.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"hoops-broadcast/internal/platform/logger"
	"hoops-broadcast/internal/platform/metrics"
	"hoops-broadcast/internal/state"
)

var (
	// ErrRequestFailed is matched by every transport or non-2xx failure of Fetch.
	ErrRequestFailed = errors.New("token request failed")

	// ErrInvalidRequest is returned before any I/O when role or phase is unknown.
	ErrInvalidRequest = errors.New("invalid token request")
)

// RequestFailedError carries the HTTP status of a rejected token request.
type RequestFailedError struct {
	StatusCode int
	Status     string
}

func (e *RequestFailedError) Error() string {
	return "failed to get token: " + e.Status
}

// Is makes errors.Is(err, ErrRequestFailed) hold for status failures.
func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// Role is the kind of participant the credential is for.
type Role string

const (
	RoleCamera Role = "camera"
	RoleAdmin  Role = "admin"
	RoleOutput Role = "output"
)

// Request describes the credential wanted. Metadata is attached to the
// participant by the media server.
type Request struct {
	Role     Role              `validate:"required,oneof=camera admin output"`
	Phase    state.Phase       `validate:"required,oneof=semi final"`
	Metadata map[string]string `validate:"-"`
}

// Response is the credential returned by the backend.
type Response struct {
	Token string `json:"token"`
	Room  string `json:"room"`
}

// Client performs token fetches against the backend at BaseURL.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
	valid   *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option { return func(cl *Client) { cl.log = l } }

// WithMetrics enables request counters. Metrics may be nil.
func WithMetrics(m *metrics.Metrics) Option { return func(cl *Client) { cl.metrics = m } }

// NewClient returns a Client for the backend at baseURL ("http://localhost:8080").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		valid:   validator.New(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = logger.Component(c.log, "token")
	return c
}

// Fetch performs one GET {base}/api/token. It neither retries nor caches.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	if err := c.valid.Struct(req); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	q := url.Values{}
	q.Set("type", string(req.Role))
	q.Set("phase", string(req.Phase))
	if len(req.Metadata) > 0 {
		meta, err := json.Marshal(req.Metadata)
		if err != nil {
			return Response{}, fmt.Errorf("%w: encode metadata: %v", ErrInvalidRequest, err)
		}
		q.Set("metadata", string(meta))
	}
	endpoint := c.baseURL + "/api/token?" + q.Encode()

	c.metrics.IncTokenRequests()
	resp, err := c.do(ctx, endpoint)
	if err != nil {
		c.metrics.IncTokenFailures()
		c.log.Warn("token request failed",
			slog.String("role", string(req.Role)),
			slog.String("phase", string(req.Phase)),
			slog.String("error", err.Error()))
		return Response{}, err
	}

	c.log.Debug("token issued",
		slog.String("role", string(req.Role)),
		slog.String("room", resp.Room))
	return resp, nil
}

func (c *Client) do(ctx context.Context, endpoint string) (Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	res, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, res.Body)
		return Response{}, &RequestFailedError{StatusCode: res.StatusCode, Status: statusText(res)}
	}

	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}
	return out, nil
}

// statusText returns the reason phrase ("Service Unavailable"), falling back
// to the full status line when the server sent a non-standard code.
func statusText(res *http.Response) string {
	if t := http.StatusText(res.StatusCode); t != "" {
		return t
	}
	return res.Status
}
