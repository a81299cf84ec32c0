// Package client is a typed wrapper over the /api/v1 REST contract.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/models"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = time.Second
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	// MaxRetries applies to 5xx and 429 responses only.
	MaxRetries int
	RetryDelay time.Duration
	// OnUnauthorized runs on every 401, before the error is returned.
	OnUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithRetry(max int, delay time.Duration) Option {
	return func(c *Client) {
		c.MaxRetries = max
		c.RetryDelay = delay
	}
}

func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.OnUnauthorized = fn }
}

// New builds a client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) { c.token = token }


// do sends one API call, retrying retryable statuses, and decodes the data
// field of the envelope into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*models.Pagination, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	for attempt := 0; ; attempt++ {
		env, status, err := c.send(ctx, method, path, target, payload)
		if err != nil {
			return nil, err
		}
		if status >= 200 && status < 300 {
			if out != nil && len(env.Data) > 0 {
				if err := json.Unmarshal(env.Data, out); err != nil {
					return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
				}
			}
			return env.Pagination, nil
		}

		apiErr := &APIError{StatusCode: status, Message: http.StatusText(status), RequestID: env.Meta.RequestID}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		if status == http.StatusUnauthorized && c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		if !retryable(status) || !idempotent(method) || attempt >= c.MaxRetries {
			return nil, apiErr
		}
		logrus.Debugf("%s %s returned %d, retrying (%d/%d)", method, path, status, attempt+1, c.MaxRetries)
		select {
		case <-ctx.Done():
			return nil, apiErr
		case <-time.After(c.RetryDelay):
		}
	}
}

func (c *Client) send(ctx context.Context, method, path, target string, payload []byte) (models.Envelope, int, error) {
	var env models.Envelope
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return env, 0, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", "req_"+uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return env, 0, &TimeoutError{Method: method, Path: path}
		}
		return env, 0, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return env, 0, &NetworkError{Method: method, Path: path, Err: err}
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return env, 0, fmt.Errorf("decode %s %s envelope: %w", method, path, err)
		}
	}
	return env, resp.StatusCode, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if perPage > 0 {
		q.Set("per_page", fmt.Sprint(perPage))
	}
	return q
}
