package credlock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yanqian/quiz-catalog/internal/domain/premium"
)

const (
	subscriptionPath           = "/api/subscription/status"
	defaultSubscriptionTimeout = 5 * time.Second
)

// BreakerConfig tunes the circuit breaker in front of the subscription API.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// SubscriptionConfig configures SubscriptionClient.
type SubscriptionConfig struct {
	BaseURL     string
	ServiceName string
	Timeout     time.Duration
	Breaker     BreakerConfig
}

// SubscriptionClient asks the subscription service for premium status. An
// open breaker fails fast so a struggling upstream does not hold requests.
type SubscriptionClient struct {
	endpoint    string
	serviceName string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	logger      *slog.Logger
}

// NewSubscriptionClient builds the client and its breaker.
func NewSubscriptionClient(cfg SubscriptionConfig, logger *slog.Logger) *SubscriptionClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSubscriptionTimeout
	}
	b := cfg.Breaker
	if b.MinRequests == 0 {
		b.MinRequests = 5
	}
	if b.FailureThreshold <= 0 {
		b.FailureThreshold = 0.6
	}
	log := logger.With("component", "credlock.subscription")
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "subscription",
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval,
		Timeout:     b.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < b.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= b.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &SubscriptionClient{
		endpoint:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + subscriptionPath,
		serviceName: cfg.ServiceName,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		breaker:     breaker,
		logger:      log,
	}
}

// IsPremium returns the premium flag for userID on topicID.
func (c *SubscriptionClient) IsPremium(ctx context.Context, userID, topicID string) (bool, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, userID, topicID)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (c *SubscriptionClient) fetch(ctx context.Context, userID, topicID string) (bool, error) {
	query := url.Values{}
	query.Set("user_id", userID)
	query.Set("topic_id", topicID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("build subscription request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerService, c.serviceName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("subscription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return false, fmt.Errorf("subscription request error: status=%d body=%s", resp.StatusCode, string(payload))
	}
	var envelope struct {
		Data struct {
			IsPremium bool `json:"is_premium"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return false, fmt.Errorf("decode subscription response: %w", err)
	}
	return envelope.Data.IsPremium, nil
}

var _ premium.SubscriptionChecker = (*SubscriptionClient)(nil)
