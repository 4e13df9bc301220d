// Package persist ships applied values to the CMS AJAX endpoint. Failures
// are non-fatal to the visual state: the value stays live in the document
// regardless of persistence outcome.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrNotSaved marks a change that is live in the document but could not be
// persisted after exhausting retries.
var ErrNotSaved = errors.New("change is live but not saved")

// Result is the endpoint's response envelope.
type Result struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// RetryPolicy bounds the save retry loop. Pure configuration, decoupled
// from notification logic.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries up to 3 attempts with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Client posts option changes to the persistence endpoint with a
// CSRF-style token.
type Client struct {
	endpoint string
	action   string
	nonce    string
	policy   RetryPolicy
	httpc    *http.Client
}

// NewClient builds a client for the endpoint. A nil httpc uses a client
// with a short timeout; saves must never hold up the UI path.
func NewClient(endpoint, action, nonce string, policy RetryPolicy, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 5 * time.Second}
	}
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	return &Client{
		endpoint: endpoint,
		action:   action,
		nonce:    nonce,
		policy:   policy,
		httpc:    httpc,
	}
}

// Save posts one (optionId, value) pair, retrying transient failures with
// bounded exponential backoff. After exhausting retries the returned error
// wraps ErrNotSaved.
func (c *Client) Save(ctx context.Context, optionID, value string) (*Result, error) {
	var result *Result

	op := func() error {
		res, err := c.post(ctx, optionID, value)
		if err != nil {
			return err
		}
		result = res
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.policy.InitialInterval
	b.MaxInterval = c.policy.MaxInterval

	retries := uint64(c.policy.MaxAttempts - 1)
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSaved, err)
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, optionID, value string) (*Result, error) {
	form := url.Values{}
	form.Set("action", c.action)
	form.Set("nonce", c.nonce)
	form.Set("option_id", optionID)
	form.Set("value", value)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}

	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !res.Success {
		return nil, fmt.Errorf("endpoint rejected save: %s", res.Message)
	}
	return &res, nil
}
