// Package shopapi is the typed client for the upstream shop backend, the
// system of record for customers, services, transactions and payments.
package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Kind classifies client failures.
type Kind string

const (
	// KindAuthRequired means no bearer token was available; no request was sent.
	KindAuthRequired Kind = "auth_required"
	// KindTransport covers network failures and non-2xx responses.
	KindTransport Kind = "transport"
	// KindRejected covers well-formed responses whose status flag is false.
	KindRejected Kind = "rejected"
)

// Sentinels usable with errors.Is against *APIError.
var (
	ErrAuthRequired = errors.New("authentication required")
	ErrUnavailable  = errors.New("shop api unavailable")
	ErrRejected     = errors.New("shop api rejected request")
)

// APIError is the single error shape produced by every wrapper call.
type APIError struct {
	Kind    Kind
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindAuthRequired:
		return ErrAuthRequired
	case KindRejected:
		return ErrRejected
	default:
		return ErrUnavailable
	}
}

func authRequired() *APIError {
	return &APIError{Kind: KindAuthRequired, Message: "authentication required, please login again"}
}

// Client calls the upstream REST backend. A Client is bound to at most one
// session token; WithToken derives a request-scoped copy.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	token   string
}

// New constructs an unauthenticated client core.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// WithToken returns a shallow copy bound to the given bearer token.
func (c *Client) WithToken(token string) *Client {
	bound := *c
	bound.token = token
	return &bound
}

// envelope is the upstream response wrapper.
type envelope struct {
	Status           bool            `json:"status"`
	ResponseDto      json.RawMessage `json:"responseDto"`
	Message          string          `json:"message"`
	ErrorDescription string          `json:"errorDescription"`
}

func (e *envelope) errorMessage(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	if e.ErrorDescription != "" {
		return e.ErrorDescription
	}
	return fallback
}

// do performs one round trip and decodes responseDto into out (when non-nil).
// fallback is the call-site error message used when the server supplies none.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any, fallback string) error {
	if c.token == "" {
		return authRequired()
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindTransport, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: fallback}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("shop api call failed", slog.String("path", path), slog.Any("error", err))
		return &APIError{Kind: KindTransport, Message: fallback}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.logger.Error("shop api decode failed", slog.String("path", path), slog.Any("error", err))
		return &APIError{Kind: KindTransport, Message: fallback}
	}

	if resp.StatusCode >= 400 || !env.Status {
		return &APIError{Kind: KindRejected, Message: env.errorMessage(fallback)}
	}

	if out != nil {
		if env.ResponseDto == nil {
			return &APIError{Kind: KindTransport, Message: fallback}
		}
		if err := json.Unmarshal(env.ResponseDto, out); err != nil {
			c.logger.Error("shop api payload decode failed", slog.String("path", path), slog.Any("error", err))
			return &APIError{Kind: KindTransport, Message: fallback}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any, fallback string) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, fallback)
}

func (c *Client) post(ctx context.Context, path string, body, out any, fallback string) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, fallback)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body, out any, fallback string) error {
	return c.do(ctx, http.MethodPut, path, query, body, out, fallback)
}

func pageQuery(pageNumber, pageSize int) url.Values {
	q := url.Values{}
	q.Set("pageNumber", fmt.Sprintf("%d", pageNumber))
	q.Set("pageSize", fmt.Sprintf("%d", pageSize))
	return q
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
