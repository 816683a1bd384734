package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/session"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Options configures a Client. Zero values fall back to the defaults below.
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	Retries         int
	RetryWait       time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	HTTPClient      *http.Client
}

const (
	defaultTimeout         = 10 * time.Second
	defaultRetryWait       = 300 * time.Millisecond
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

// Client is the single request-building layer in front of the store backend.
type Client struct {
	http      *resty.Client
	baseURL   string
	retries   int
	retryWait time.Duration
	breaker   *gobreaker.CircuitBreaker[*resty.Response]
}

// errServer marks 5xx answers so the breaker counts them as failures.
var errServer = errors.New("api: server error")

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = defaultBreakerFailures
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = defaultBreakerTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	base := strings.TrimRight(opts.BaseURL, "/")

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(base).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:    "store-backend",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		http:      rc,
		baseURL:   base,
		retries:   opts.Retries,
		retryWait: opts.RetryWait,
		breaker:   breaker,
	}
}

// BaseURL is the backend origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	sess   *session.Session
	auth   bool
}

// send executes req and returns the raw body of a 2xx answer. Non-2xx answers
// come back as *Error. GETs are retried on transport failures and 5xx.
func (c *Client) send(ctx context.Context, req request) ([]byte, int, error) {
	if req.auth && !req.sess.Authenticated() {
		return nil, 0, ErrUnauthorized
	}

	attempts := 1
	if req.method == http.MethodGet {
		attempts += c.retries
	}

	var (
		resp *resty.Response
		err  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err = c.breaker.Execute(func() (*resty.Response, error) {
			r, err := c.build(ctx, req).Execute(req.method, req.path)
			if err != nil {
				return nil, err
			}
			if r.StatusCode() >= http.StatusInternalServerError {
				return r, errServer
			}
			return r, nil
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		if err == nil || attempt == attempts {
			break
		}

		logger.Warn(ctx, "Retrying backend request",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(c.retryWait * time.Duration(attempt)):
		}
	}

	if err != nil && !errors.Is(err, errServer) {
		return nil, 0, fmt.Errorf("%w: %s %s: %v", ErrBackendUnavailable, req.method, req.path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		apiErr := Normalize(status, resp.Body())
		logger.Debug(ctx, "Backend returned an error",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", status),
		)
		return nil, status, apiErr
	}
	return resp.Body(), status, nil
}

func (c *Client) build(ctx context.Context, req request) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if req.query != nil {
		r.SetQueryParamsFromValues(req.query)
	}
	if req.body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.body)
	}
	if req.sess.Authenticated() {
		r.SetAuthToken(req.sess.Tokens.Access)
	}
	return r
}

// do sends req and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, req request, out any) error {
	body, _, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}
