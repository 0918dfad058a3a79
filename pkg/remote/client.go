// Package remote talks to another localfeed server's preference API. Client
// implements ratio.Store so it can sit behind ratio.Service as the remote
// half of the write-through cache.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/ratio"
)

// ErrUnavailable wraps transport failures, 5xx responses and calls rejected
// by the open circuit breaker.
var ErrUnavailable = errors.New("remote preference store unavailable")

const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxFailures = 5
	DefaultOpenTimeout = 30 * time.Second
)

var _ ratio.Store = (*Client)(nil)

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[models.RatioPreferences]
	logger  *zap.Logger

	maxFailures uint32
	openTimeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithBreaker sets how many consecutive failures open the circuit and how
// long it stays open before a trial request.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		c.maxFailures = maxFailures
		c.openTimeout = openTimeout
	}
}

// New returns a client for the server at baseURL, e.g. "http://prefs:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: DefaultTimeout},
		logger:      zap.NewNop(),
		maxFailures: DefaultMaxFailures,
		openTimeout: DefaultOpenTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("remote")

	c.cb = gobreaker.NewCircuitBreaker[models.RatioPreferences](gobreaker.Settings{
		Name:        "remote-preferences",
		MaxRequests: 1,
		Timeout:     c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.maxFailures
		},
		// Only outages count against the breaker. A 404 or a rejected
		// payload means the remote is healthy.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// State returns the circuit breaker state: "closed", "half-open" or "open".
func (c *Client) State() string {
	return c.cb.State().String()
}

// Load fetches a user's preferences. It returns ratio.ErrNotFound on 404.
func (c *Client) Load(ctx context.Context, userID string) (models.RatioPreferences, error) {
	return c.execute(func() (models.RatioPreferences, error) {
		var prefs models.RatioPreferences
		err := c.do(ctx, http.MethodGet, c.prefsURL(userID), nil, &prefs)
		return prefs, err
	})
}

// saveRequest is the PUT body understood by the preference API.
type saveRequest struct {
	Local int    `json:"local"`
	Topic string `json:"topic,omitempty"`
}

// Save upserts a user's preferences. Topical is derived by the server.
func (c *Client) Save(ctx context.Context, prefs models.RatioPreferences) error {
	_, err := c.execute(func() (models.RatioPreferences, error) {
		body, err := json.Marshal(saveRequest{Local: prefs.Local, Topic: prefs.Topic})
		if err != nil {
			return models.RatioPreferences{}, fmt.Errorf("failed to encode preferences: %w", err)
		}
		return models.RatioPreferences{}, c.do(ctx, http.MethodPut, c.prefsURL(prefs.UserID), body, nil)
	})
	return err
}

func (c *Client) execute(fn func() (models.RatioPreferences, error)) (models.RatioPreferences, error) {
	prefs, err := c.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return models.RatioPreferences{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return prefs, err
}

func (c *Client) prefsURL(userID string) string {
	return c.baseURL + "/api/v1/preferences/" + url.PathEscape(userID)
}

func (c *Client) do(ctx context.Context, method, target string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ratio.ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("remote rejected %s %s: status %d: %s", method, target, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
