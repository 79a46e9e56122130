package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmynk/splitchain/internal/models"
)

func feedServer(t *testing.T, hits *atomic.Int64, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestGetCachesWithinTTL(t *testing.T) {
	var hits atomic.Int64
	server := feedServer(t, &hits, `{"xion":{"usd":0.05}}`)
	defer server.Close()

	now := time.Now()
	cache := New(server.URL, "xion", withClock(func() time.Time { return now }))

	ctx := context.Background()
	if got := cache.Get(ctx); got != 0.05 {
		t.Fatalf("Get() = %v, want 0.05", got)
	}
	if got := cache.Get(ctx); got != 0.05 {
		t.Fatalf("second Get() = %v, want 0.05", got)
	}
	if hits.Load() != 1 {
		t.Errorf("feed hit %d times, want 1 (cached)", hits.Load())
	}

	// Expire the cache and watch the refresh happen.
	now = now.Add(defaultTTL + time.Second)
	cache.Get(ctx)
	if hits.Load() != 2 {
		t.Errorf("feed hit %d times after expiry, want 2", hits.Load())
	}
}

func TestInvalidateForcesRefresh(t *testing.T) {
	var hits atomic.Int64
	server := feedServer(t, &hits, `{"xion":{"usd":0.05}}`)
	defer server.Close()

	cache := New(server.URL, "xion")
	ctx := context.Background()

	cache.Get(ctx)
	cache.Invalidate()
	cache.Get(ctx)
	if hits.Load() != 2 {
		t.Errorf("feed hit %d times, want 2 after invalidate", hits.Load())
	}
}

func TestGetFallsBackWhenFeedDown(t *testing.T) {
	cache := New("http://127.0.0.1:1", "xion", WithFallback(0.01))
	if got := cache.Get(context.Background()); got != 0.01 {
		t.Errorf("Get() = %v, want fallback 0.01", got)
	}
}

func TestRefreshRejectsMissingAsset(t *testing.T) {
	var hits atomic.Int64
	server := feedServer(t, &hits, `{"other":{"usd":1.0}}`)
	defer server.Close()

	cache := New(server.URL, "xion")
	if _, err := cache.Refresh(context.Background()); err == nil {
		t.Error("Refresh() should fail when the asset is missing from the feed")
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount int64
		price  float64
		want   string
	}{
		{1_000_000, 0.034, "$0.03"},
		{100_000_000, 0.034, "$3.40"},
		{1_000, 0.034, "$0.0000"},
		{0, 0.034, "$0.00"},
		{1_000_000, 0, "$0.00"},
	}
	for _, tt := range tests {
		if got := FormatUSD(models.Amount(tt.amount), tt.price); got != tt.want {
			t.Errorf("FormatUSD(%d, %v) = %q, want %q", tt.amount, tt.price, got, tt.want)
		}
	}
}
