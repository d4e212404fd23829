package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
)

type httpClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Session]
	logger  *log.Logger
}

// NewHTTPClient builds a gateway client with a bounded per-call timeout and a
// circuit breaker, so a degraded provider fails checkouts fast instead of
// holding request handlers open.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	breaker := gobreaker.NewCircuitBreaker[*Session](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("gateway breaker %s: %s -> %s", name, from, to)
		},
	})
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		logger:  logger,
	}
}

func (c *httpClient) CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error) {
	session, err := c.breaker.Execute(func() (*Session, error) {
		return c.createSession(ctx, in)
	})
	if err != nil {
		c.logger.Printf("gateway: create session failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	return session, nil
}

func (c *httpClient) createSession(ctx context.Context, in CreateSessionInput) (*Session, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("gateway status %d: %s", resp.StatusCode, payload)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	if session.ID == "" || session.RedirectURL == "" {
		return nil, fmt.Errorf("gateway returned incomplete session")
	}
	return &session, nil
}
