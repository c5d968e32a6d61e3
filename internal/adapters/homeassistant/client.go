package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bambu.printjobs/internal/core/circuitbreaker"
	"bambu.printjobs/internal/core/domain"
	"bambu.printjobs/internal/core/logger"
)

const maxErrorBody = 512

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("home assistant %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks to the Home Assistant REST API. It reads the state registry
// and calls services; it never writes state directly.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(cl *Client) { cl.breaker = cb }
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
		breaker:    circuitbreaker.New("home-assistant-states"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// States implements ports.StateRegistry.
func (c *Client) States(ctx context.Context) (*domain.Registry, error) {
	var reg *domain.Registry
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		body, err := c.do(ctx, http.MethodGet, "/api/states", nil)
		if err != nil {
			return err
		}
		reg, err = decodeStates(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "Fetched state registry", "entries", reg.Len())
	return reg, nil
}

// CallService implements ports.ServiceCaller. The response body is discarded.
func (c *Client) CallService(ctx context.Context, svcDomain, service string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode service data: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, fmt.Sprintf("/api/services/%s/%s", svcDomain, service), payload)
	return err
}

// Ping checks that the API is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("home assistant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(respBody)
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(excerpt)}
	}

	return respBody, nil
}
