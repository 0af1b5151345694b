package profile

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
)

// DefaultTimeout bounds a single request when the config leaves it unset.
const DefaultTimeout = 5 * time.Second

// HeaderIdempotencyKey carries the idempotency key of a request.
const HeaderIdempotencyKey = "Idempotency-Key"

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("profile: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Temporary reports whether retrying the call later may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests || e.Code == http.StatusRequestTimeout
}

// Client is the HTTP/JSON implementation of API.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrOffline
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("profile: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("profile: unsupported scheme %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

type scoreRequest struct {
	Points int `json:"points"`
}

type collectibleRequest struct {
	LevelID string `json:"level_id"`
}

type progressRequest struct {
	Unlocked int `json:"unlocked"`
}

// SubmitScore adds points to the user's total.
func (c *Client) SubmitScore(ctx context.Context, userID string, points int) error {
	return c.do(ctx, http.MethodPost, userPath(userID, "scores"), scoreRequest{Points: points}, nil)
}

// MarkLevelComplete records a won level.
func (c *Client) MarkLevelComplete(ctx context.Context, userID, levelID string) error {
	return c.do(ctx, http.MethodPost, userPath(userID, "levels", levelID, "complete"), nil, nil)
}

// AwardCollectible grants the collectible of a perfectly played level.
func (c *Client) AwardCollectible(ctx context.Context, userID, levelID string) error {
	return c.do(ctx, http.MethodPost, userPath(userID, "collectibles"), collectibleRequest{LevelID: levelID}, nil)
}

// FetchProfile returns the remote profile.
func (c *Client) FetchProfile(ctx context.Context, userID string) (Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, userPath(userID), nil, &p); err != nil {
		return Profile{}, err
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return p, nil
}

// UpdateProgress raises the remote unlocked ordinal. The server keeps the max.
func (c *Client) UpdateProgress(ctx context.Context, userID, difficulty string, unlocked int) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "progress", difficulty), progressRequest{Unlocked: unlocked}, nil)
}

func userPath(userID string, parts ...string) string {
	segs := append([]string{"users", userID}, parts...)
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(segs, "/")
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("profile: cannot encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("profile: cannot build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		key, ok := IdempotencyKey(ctx)
		if !ok {
			key = NewKey()
		}
		req.Header.Set(HeaderIdempotencyKey, key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s: %w", ErrOffline, method, path, err)
		}
		return fmt.Errorf("profile: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("profile: cannot decode response: %w", err)
	}
	return nil
}

// Retryable reports whether a failed call is worth queueing for later.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOffline) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
