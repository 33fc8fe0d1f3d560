package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	productsPath     = "/api/v1/products"
	customersPath    = "/api/v1/customers"
	transactionsPath = "/api/v1/transactions"

	maxResponseBody = 4 << 20 // 4MB
)

// errServerStatus marks 5xx responses so the breaker counts them as failures.
var errServerStatus = errors.New("backend: server error")

type rawResponse struct {
	status int
	body   []byte
}

// Client talks to the Go Bisnis REST API on behalf of the credential passed to each call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*rawResponse]
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithBreakerSettings overrides the default circuit breaker settings.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(cl *Client) { cl.breaker = gobreaker.NewCircuitBreaker[*rawResponse](st) }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker[*rawResponse](c.defaultBreakerSettings())
	}
	return c
}

func (c *Client) defaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "go-bisnis-backend",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// the caller giving up says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
}

// ListProducts returns the caller's products in backend order.
func (c *Client) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, productsPath, token, nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (c *Client) ListCustomers(ctx context.Context, token string) ([]domain.Customer, error) {
	var customers []domain.Customer
	if err := c.do(ctx, http.MethodGet, customersPath, token, nil, &customers); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	return customers, nil
}

// CreateTransaction posts a sale. The backend decrements stock as part of creating it.
func (c *Client) CreateTransaction(ctx context.Context, token string, order domain.Order) (domain.OrderConfirmation, error) {
	var confirmation domain.OrderConfirmation
	if err := c.do(ctx, http.MethodPost, transactionsPath, token, order, &confirmation); err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("create transaction: %w", err)
	}
	return confirmation, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	raw, err := c.breaker.Execute(func() (*rawResponse, error) {
		return c.roundTrip(ctx, method, path, token, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrBackendUnavailable
	}
	if err != nil && !errors.Is(err, errServerStatus) {
		return err
	}

	switch {
	case raw.status == http.StatusUnauthorized:
		return ErrUnauthorized
	case raw.status < 200 || raw.status > 299:
		return newAPIError(raw)
	case raw.status == http.StatusNoContent || out == nil || len(bytes.TrimSpace(raw.body)) == 0:
		return nil
	}

	if err := json.Unmarshal(raw.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, payload []byte) (*rawResponse, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	raw := &rawResponse{status: resp.StatusCode, body: data}
	if resp.StatusCode >= 500 {
		return raw, errServerStatus
	}
	return raw, nil
}

type errorPayload struct {
	Error string `json:"error"`
}

func newAPIError(raw *rawResponse) *APIError {
	msg := FallbackMessage
	var payload errorPayload
	if err := json.Unmarshal(raw.body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{StatusCode: raw.status, Message: msg}
}
