// Generic HTTP plumbing shared by every remote call.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token attached to every request.
//
// Implemented by the auth store; returns an error when no usable session exists.
type TokenSource interface {
	AccessToken() (string, error)
}

// Client wraps an [http.Client] with bearer authentication and a shared rate limiter.
//
// The poll loop and user-initiated control calls draw from the same limiter
// so bursts of user input cannot starve the reconciler (or vice versa).
type Client struct {
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
}

// NewClient creates a Client. A nil httpClient falls back to [http.DefaultClient];
// rps <= 0 disables rate limiting.
func NewClient(httpClient *http.Client, tokens TokenSource, rps float64) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &Client{http: httpClient, tokens: tokens, limiter: limiter}
}

// Authenticated returns the token source's error, if any, without making a request.
func (c *Client) Authenticated() error {
	_, err := c.tokens.AccessToken()
	return err
}

// Result is the uniform outcome of a remote call: a payload or an error string,
// never both, and never a raised error. This is the sole channel by which
// failure crosses the API client boundary.
type Result[T any] struct {
	Data *T
	Err  string
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Err == ""
}

// Status is the outcome of a remote call that produces no payload.
type Status struct {
	Err string
}

// OK reports whether the call succeeded.
func (s Status) OK() bool {
	return s.Err == ""
}

// CallOpts describes one remote request.
type CallOpts struct {
	Method    string
	URL       string
	Body      any    // JSON-encoded when non-nil
	ErrLabel  string // human-readable label used for non-2xx responses
	ParseJSON bool   // when false the body is not read
}

// Call performs an authenticated request and maps every failure mode into the
// Result contract: transport errors carry the underlying message (falling back
// to ErrLabel), non-2xx statuses carry ErrLabel with no payload, and a 204 or
// ParseJSON=false short-circuits to an empty success without touching the body.
func Call[T any](ctx context.Context, c *Client, opts CallOpts) Result[T] {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Result[T]{Err: errString(err, opts.ErrLabel)}
		}
	}

	token, err := c.tokens.AccessToken()
	if err != nil {
		return Result[T]{Err: errString(err, opts.ErrLabel)}
	}

	var body *bytes.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return Result[T]{Err: errString(err, opts.ErrLabel)}
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, body)
	if err != nil {
		return Result[T]{Err: errString(err, opts.ErrLabel)}
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result[T]{Err: errString(err, opts.ErrLabel)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result[T]{Err: opts.ErrLabel}
	}

	if resp.StatusCode == http.StatusNoContent || !opts.ParseJSON {
		return Result[T]{}
	}

	var data T
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Result[T]{Err: opts.ErrLabel}
	}

	return Result[T]{Data: &data}
}

// send runs a payload-free request under the same contract as [Call].
func send(ctx context.Context, c *Client, opts CallOpts) Status {
	opts.ParseJSON = false
	res := Call[struct{}](ctx, c, opts)
	return Status{Err: res.Err}
}

func errString(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// errorf converts a non-OK status into a wrapped sentinel error for callers
// outside the playback control plane.
func errorf(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}
