package vendors

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/pkg/db/models"
	pkgerrors "github.com/tregohealth/trego-backend/pkg/errors"
	"github.com/tregohealth/trego-backend/pkg/logger"
	pkgredis "github.com/tregohealth/trego-backend/pkg/redis"
)

// Info is the display metadata buckets and pre-order payloads carry for a
// vendor. A zero Name/Logo means the vendor record was not found; allocation
// treats that as tolerable rather than fatal.
type Info struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Logo string    `json:"logo"`
}

type vendorLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	VendorKey(vendorID string) string
}

// Directory resolves vendor display metadata, caching results in Redis so the
// allocation hot path does not hit Postgres per vendor per request.
type Directory interface {
	Lookup(ctx context.Context, vendorID uuid.UUID) (Info, error)
}

type directory struct {
	repo  vendorLoader
	cache cache
	ttl   time.Duration
	logg  *logger.Logger
}

// NewDirectory builds a Directory. The cache may be nil, in which case every
// lookup goes to the database.
func NewDirectory(repo vendorLoader, c cache, ttl time.Duration, logg *logger.Logger) (Directory, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "vendor repository is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &directory{repo: repo, cache: c, ttl: ttl, logg: logg}, nil
}

func (d *directory) Lookup(ctx context.Context, vendorID uuid.UUID) (Info, error) {
	if cached, ok := d.fromCache(ctx, vendorID); ok {
		return cached, nil
	}

	vendor, err := d.repo.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Info{ID: vendorID}, nil
		}
		return Info{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading vendor")
	}

	info := Info{ID: vendor.ID, Name: vendor.Name, Logo: vendor.Logo}
	d.toCache(ctx, info)
	return info, nil
}

func (d *directory) fromCache(ctx context.Context, vendorID uuid.UUID) (Info, bool) {
	if d.cache == nil {
		return Info{}, false
	}

	raw, err := d.cache.Get(ctx, d.cache.VendorKey(vendorID.String()))
	if err != nil {
		if !pkgredis.IsMiss(err) {
			d.logg.Warn(d.logg.WithVendorID(ctx, vendorID.String()), "vendor cache read failed")
		}
		return Info{}, false
	}

	var info Info
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		d.logg.Warn(d.logg.WithVendorID(ctx, vendorID.String()), "vendor cache entry corrupt")
		return Info{}, false
	}
	return info, true
}

func (d *directory) toCache(ctx context.Context, info Info) {
	if d.cache == nil {
		return
	}

	encoded, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, d.cache.VendorKey(info.ID.String()), string(encoded), d.ttl); err != nil {
		d.logg.Warn(d.logg.WithVendorID(ctx, info.ID.String()), "vendor cache write failed")
	}
}
