// Package directory looks up people in the corporate directory. The
// directory is the source of truth for identity; the registration
// database only stores what attendees add on top of it.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"confreg/pkg/platform/circuit"
	"confreg/pkg/platform/sentinel"
)

// Employee is a directory record. EmployeeID is the payroll identifier,
// distinct from the registration database's user ID.
type Employee struct {
	Login      string `json:"login"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `json:"department"`
	Country    string `json:"country"`
	City       string `json:"city"`
	Email      string `json:"email"`
	EmployeeID string `json:"employeeId"`
}

// Client resolves directory records.
type Client interface {
	ByEmail(ctx context.Context, email string) (Employee, error)
	ByLogin(ctx context.Context, login string) (Employee, error)
}

// HTTPClient talks to the directory service over HTTP. Consecutive
// failures open a circuit breaker; while open, lookups that were
// answered before are served from a stale in-memory copy so a
// directory outage does not block registration.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger

	mu    sync.RWMutex
	stale map[string]Employee
}

// HTTPClientOption configures an HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) HTTPClientOption {
	return func(c *HTTPClient) { c.logger = logger }
}

// NewHTTPClient builds a client against the directory service base URL.
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: circuit.New("directory"),
		logger:  slog.Default(),
		stale:   make(map[string]Employee),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) ByEmail(ctx context.Context, email string) (Employee, error) {
	return c.lookup(ctx, "email", email)
}

func (c *HTTPClient) ByLogin(ctx context.Context, login string) (Employee, error) {
	return c.lookup(ctx, "login", login)
}

func (c *HTTPClient) lookup(ctx context.Context, field, value string) (Employee, error) {
	u := fmt.Sprintf("%s/employees?%s=%s", c.baseURL, field, url.QueryEscape(value))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Employee{}, fmt.Errorf("directory request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.degraded(field, value, fmt.Errorf("directory lookup %s=%s: %w", field, value, sentinel.ErrUnavailable))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// The service answered; a missing person is not an outage.
		c.recordSuccess()
		return Employee{}, fmt.Errorf("directory %s=%s: %w", field, value, sentinel.ErrNotFound)
	default:
		return c.degraded(field, value, fmt.Errorf("directory %s=%s: status %d: %w", field, value, resp.StatusCode, sentinel.ErrUnavailable))
	}

	var emp Employee
	if err := json.NewDecoder(resp.Body).Decode(&emp); err != nil {
		return Employee{}, fmt.Errorf("decode directory response: %w", err)
	}

	c.recordSuccess()
	c.mu.Lock()
	c.stale[field+"="+value] = emp
	c.mu.Unlock()
	return emp, nil
}

// degraded records the failure and serves a stale copy once the
// circuit is open. The stale map is only fed by successful lookups, so
// a hit is always a record the directory returned earlier.
func (c *HTTPClient) degraded(field, value string, cause error) (Employee, error) {
	useFallback, change := c.breaker.RecordFailure()
	if change.Opened {
		c.logger.Warn("directory circuit opened", "breaker", c.breaker.Name())
	}
	if !useFallback {
		return Employee{}, cause
	}

	c.mu.RLock()
	emp, ok := c.stale[field+"="+value]
	c.mu.RUnlock()
	if !ok {
		return Employee{}, cause
	}
	c.logger.Warn("serving stale directory record", field, value)
	return emp, nil
}

func (c *HTTPClient) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("directory circuit closed", "breaker", c.breaker.Name())
	}
}
