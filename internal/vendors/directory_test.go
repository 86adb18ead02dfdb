package vendors

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/pkg/db/models"
	"github.com/tregohealth/trego-backend/pkg/logger"
)

type stubLoader struct {
	vendor *models.Vendor
	err    error
	calls  int
}

func (s *stubLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vendor, nil
}

type memoryCache struct {
	entries map[string]string
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	v, ok := c.entries[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.entries[key] = value.(string)
	return nil
}

func (c *memoryCache) VendorKey(vendorID string) string {
	return "trego:vendor:" + vendorID
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
}

func TestDirectoryLookupCachesVendor(t *testing.T) {
	t.Parallel()

	vendor := &models.Vendor{ID: uuid.New(), Name: "HealthPlus", Logo: "https://cdn.trego.health/hp.png"}
	loader := &stubLoader{vendor: vendor}
	cache := newMemoryCache()

	dir, err := NewDirectory(loader, cache, time.Minute, testLogger())
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	info, err := dir.Lookup(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if info.Name != "HealthPlus" || info.Logo != vendor.Logo {
		t.Fatalf("unexpected info: %+v", info)
	}

	// second lookup must be served from cache
	if _, err := dir.Lookup(context.Background(), vendor.ID); err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected 1 DB call, got %d", loader.calls)
	}

	raw, ok := cache.entries[cache.VendorKey(vendor.ID.String())]
	if !ok {
		t.Fatal("expected cache entry")
	}
	var cached Info
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("cached entry is not JSON: %v", err)
	}
	if cached.ID != vendor.ID {
		t.Fatalf("cached wrong vendor: %+v", cached)
	}
}

func TestDirectoryLookupMissingVendorIsNotFatal(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{err: gorm.ErrRecordNotFound}
	dir, err := NewDirectory(loader, nil, time.Minute, testLogger())
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	id := uuid.New()
	info, err := dir.Lookup(context.Background(), id)
	if err != nil {
		t.Fatalf("expected tolerated miss, got %v", err)
	}
	if info.ID != id || info.Name != "" || info.Logo != "" {
		t.Fatalf("expected zero display info, got %+v", info)
	}
}

func TestDirectoryLookupCorruptCacheFallsThrough(t *testing.T) {
	t.Parallel()

	vendor := &models.Vendor{ID: uuid.New(), Name: "MediMart"}
	loader := &stubLoader{vendor: vendor}
	cache := newMemoryCache()
	cache.entries[cache.VendorKey(vendor.ID.String())] = "{not json"

	dir, err := NewDirectory(loader, cache, time.Minute, testLogger())
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	info, err := dir.Lookup(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if info.Name != "MediMart" {
		t.Fatalf("expected DB fallback, got %+v", info)
	}
	if loader.calls != 1 {
		t.Fatalf("expected DB call after corrupt cache, got %d", loader.calls)
	}
}

func TestDirectoryLookupDBErrorSurfaces(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{err: errors.New("connection refused")}
	dir, err := NewDirectory(loader, nil, time.Minute, testLogger())
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	if _, err := dir.Lookup(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error from DB failure")
	}
}
