package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"shopdesk/backend/internal/domain"
)

func TestNoopCompanyCacheAlwaysMisses(t *testing.T) {
	var c CompanyCache = NoopCompanyCache{}
	ctx := context.Background()
	if err := c.SetCompany(ctx, domain.CompanyProfile{Name: "Corner Shop"}, time.Minute); err != nil {
		t.Fatalf("SetCompany: %v", err)
	}
	if _, ok, err := c.GetCompany(ctx); ok || err != nil {
		t.Fatalf("noop cache returned a hit (ok=%v err=%v)", ok, err)
	}
}

// Needs a running Redis; set TEST_REDIS_ADDR to enable.
func TestRedisCompanyCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	c := NewRedisCompanyCache(addr, "", 15)
	defer c.Close()
	ctx := context.Background()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := c.InvalidateCompany(ctx); err != nil {
		t.Fatalf("InvalidateCompany: %v", err)
	}
	if _, ok, err := c.GetCompany(ctx); ok || err != nil {
		t.Fatalf("expected miss after invalidate (ok=%v err=%v)", ok, err)
	}

	want := domain.CompanyProfile{Name: "Corner Shop", CurrencyCode: "EUR"}
	if err := c.SetCompany(ctx, want, time.Minute); err != nil {
		t.Fatalf("SetCompany: %v", err)
	}
	got, ok, err := c.GetCompany(ctx)
	if err != nil || !ok {
		t.Fatalf("expected hit (ok=%v err=%v)", ok, err)
	}
	if got.Name != want.Name || got.CurrencyCode != want.CurrencyCode {
		t.Fatalf("got %+v", got)
	}
}
