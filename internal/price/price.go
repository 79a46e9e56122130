// Package price maintains the fiat price of the base token for display
// purposes. The price is process-wide state with an explicit refresh
// policy: a time-boxed cache behind Get/Invalidate/Refresh rather than
// ambient globals. Prices never feed settlement arithmetic; they only
// decorate balances for humans, so float64 is acceptable here.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mmynk/splitchain/internal/models"
)

const (
	defaultTTL      = 5 * time.Minute
	defaultFallback = 0.034
	defaultTimeout  = 10 * time.Second
)

// Cache is a time-boxed price cache. Safe for concurrent use.
type Cache struct {
	url      string
	assetID  string
	ttl      time.Duration
	fallback float64
	httpc    *http.Client
	now      func() time.Time

	mu        sync.Mutex
	value     float64
	fetchedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides how long a fetched price stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithFallback overrides the price used when the feed is down and no
// fresh value is cached.
func WithFallback(price float64) Option {
	return func(c *Cache) { c.fallback = price }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Cache) { c.httpc = httpc }
}

// withClock is used by tests to control freshness.
func withClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache over a simple-price feed endpoint. assetID names
// the asset inside the feed's response object.
func New(feedURL, assetID string, opts ...Option) *Cache {
	c := &Cache{
		url:      feedURL,
		assetID:  assetID,
		ttl:      defaultTTL,
		fallback: defaultFallback,
		httpc:    &http.Client{Timeout: defaultTimeout},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current price, refreshing if the cached value is
// stale. When the feed cannot be reached and nothing fresh is cached,
// the fallback price is returned; the fallback is never cached.
func (c *Cache) Get(ctx context.Context) float64 {
	c.mu.Lock()
	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		value := c.value
		c.mu.Unlock()
		return value
	}
	c.mu.Unlock()

	value, err := c.Refresh(ctx)
	if err != nil {
		return c.fallback
	}
	return value
}

// Refresh fetches the price unconditionally and caches it on success.
func (c *Cache) Refresh(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch price: status %d", resp.StatusCode)
	}

	// Feed shape: {"<asset>": {"usd": 0.034}}
	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode price: %w", err)
	}
	value, ok := payload[c.assetID]["usd"]
	if !ok || value <= 0 {
		return 0, fmt.Errorf("price for %q not in feed response", c.assetID)
	}

	c.mu.Lock()
	c.value = value
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops the cached value so the next Get refreshes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// FormatUSD renders a base-unit amount in USD at the given price.
func FormatUSD(amount models.Amount, price float64) string {
	if price <= 0 {
		return "$0.00"
	}
	usd := float64(amount) / models.BaseUnitsPerToken * price
	switch {
	case usd != 0 && usd < 0.01 && usd > -0.01:
		return fmt.Sprintf("$%.4f", usd)
	default:
		return fmt.Sprintf("$%.2f", usd)
	}
}
