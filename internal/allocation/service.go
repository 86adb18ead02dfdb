package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/internal/preorders"
	"github.com/tregohealth/trego-backend/internal/substitutes"
	"github.com/tregohealth/trego-backend/internal/vendors"
	"github.com/tregohealth/trego-backend/pkg/config"
	"github.com/tregohealth/trego-backend/pkg/db/models"
	pkgerrors "github.com/tregohealth/trego-backend/pkg/errors"
	"github.com/tregohealth/trego-backend/pkg/logger"
	"github.com/tregohealth/trego-backend/pkg/metrics"
)

type offerSource interface {
	OffersFor(ctx context.Context, medicineIDs []uuid.UUID) ([]models.Stock, error)
}

type medicineLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Medicine, error)
}

type substituteFinder interface {
	FindSubstitutes(ctx context.Context, medicineID uuid.UUID, orderBy substitutes.OrderBy) ([]substitutes.Candidate, error)
}

type vendorDirectory interface {
	Lookup(ctx context.Context, vendorID uuid.UUID) (vendors.Info, error)
}

type selectionStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PreOrder, error)
	SaveSelection(ctx context.Context, preOrderID uuid.UUID, vendorID uuid.UUID, payload []byte) error
}

// CartResult carries the computed buckets plus the outcome of the best-effort
// vendor write-back, kept separate so callers can tell a successful allocation
// with a failed side effect apart from a failed allocation.
type CartResult struct {
	Buckets            []Bucket
	SelectionPersisted bool
}

// Service computes vendor buckets for a requested medicine list.
type Service interface {
	Allocate(ctx context.Context, items []RequestedItem) ([]Bucket, error)
	AllocateFromCart(ctx context.Context, snapshot CartSnapshot) (CartResult, error)
}

type service struct {
	stocks    offerSource
	catalog   medicineLoader
	subs      substituteFinder
	directory vendorDirectory
	orders    selectionStore

	deliveryCharge   decimal.Decimal
	deliveryEstimate string

	logg    *logger.Logger
	metrics *metrics.AllocationMetrics
}

// NewService wires the allocation orchestrator. The orders store may be nil
// when cart mode is not used; every other collaborator is required.
func NewService(
	stocks offerSource,
	catalog medicineLoader,
	subs substituteFinder,
	directory vendorDirectory,
	orders selectionStore,
	cfg config.AllocationConfig,
	logg *logger.Logger,
	m *metrics.AllocationMetrics,
) (Service, error) {
	if stocks == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stock source is required")
	}
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "medicine catalog is required")
	}
	if subs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "substitute finder is required")
	}
	if directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "vendor directory is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}

	charge, err := decimal.NewFromString(cfg.DeliveryCharge)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "invalid delivery charge")
	}

	return &service{
		stocks:           stocks,
		catalog:          catalog,
		subs:             subs,
		directory:        directory,
		orders:           orders,
		deliveryCharge:   charge,
		deliveryEstimate: cfg.DeliveryEstimate,
		logg:             logg,
		metrics:          m,
	}, nil
}

// Allocate evaluates every vendor carrying at least one requested medicine and
// returns their buckets sorted by payable total ascending. No side effects.
func (s *service) Allocate(ctx context.Context, items []RequestedItem) ([]Bucket, error) {
	started := time.Now()

	buckets, err := s.buildBuckets(ctx, normalizeRequested(items), nil)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if !buckets[i].PayableTotal.Equal(buckets[j].PayableTotal) {
			return buckets[i].PayableTotal.LessThan(buckets[j].PayableTotal)
		}
		return buckets[i].VendorID.String() < buckets[j].VendorID.String()
	})

	s.metrics.ObserveDuration("direct", time.Since(started))
	s.metrics.AddBuckets("direct", len(buckets))
	return buckets, nil
}

// AllocateFromCart evaluates only the vendors already present in the cart and
// ranks completeness above price. When the snapshot references a pre-order the
// winning vendor is written back to it, best effort.
func (s *service) AllocateFromCart(ctx context.Context, snapshot CartSnapshot) (CartResult, error) {
	started := time.Now()

	requested, chosen := flattenCart(snapshot)
	buckets, err := s.buildBuckets(ctx, requested, chosen)
	if err != nil {
		return CartResult{}, err
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		ai, aj := len(buckets[i].AvailableItems), len(buckets[j].AvailableItems)
		if ai != aj {
			return ai > aj
		}
		if !buckets[i].PayableTotal.Equal(buckets[j].PayableTotal) {
			return buckets[i].PayableTotal.LessThan(buckets[j].PayableTotal)
		}
		return buckets[i].VendorID.String() < buckets[j].VendorID.String()
	})

	result := CartResult{Buckets: buckets}
	if len(buckets) > 0 && snapshot.PreOrderID != nil {
		result.SelectionPersisted = s.persistSelection(ctx, *snapshot.PreOrderID, buckets[0])
	}

	s.metrics.ObserveDuration("cart", time.Since(started))
	s.metrics.AddBuckets("cart", len(buckets))
	return result, nil
}

// buildBuckets runs the shared middle of both algorithms. A nil restrictTo
// means every vendor with a relevant offer is evaluated.
func (s *service) buildBuckets(ctx context.Context, requested []RequestedItem, restrictTo map[uuid.UUID]struct{}) ([]Bucket, error) {
	if len(requested) == 0 {
		return []Bucket{}, nil
	}

	ids := medicineIDs(requested)
	stocks, err := s.stocks.OffersFor(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading vendor offers")
	}

	byVendor, carriedBySomeone := groupOffers(stocks, restrictTo)

	globallyUnavailable := make(map[uuid.UUID]struct{})
	for _, item := range requested {
		if _, ok := carriedBySomeone[item.MedicineID]; !ok {
			globallyUnavailable[item.MedicineID] = struct{}{}
		}
	}

	var tolerated error

	medicines, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		tolerated = multierr.Append(tolerated, fmt.Errorf("loading medicines: %w", err))
		s.metrics.IncPartialFailure("medicine_lookup")
		medicines = map[uuid.UUID]models.Medicine{}
	}

	subs := s.substitutesFor(ctx, requested, byVendor, globallyUnavailable, &tolerated)

	vendorOrder := make([]uuid.UUID, 0, len(byVendor))
	for vendorID := range byVendor {
		vendorOrder = append(vendorOrder, vendorID)
	}
	sort.Slice(vendorOrder, func(i, j int) bool {
		return vendorOrder[i].String() < vendorOrder[j].String()
	})

	// Per-vendor construction shares no mutable state, so fan out.
	buckets := make([]*Bucket, len(vendorOrder))
	infos := s.lookupVendors(ctx, vendorOrder, &tolerated)

	var wg sync.WaitGroup
	for i, vendorID := range vendorOrder {
		wg.Add(1)
		go func(i int, vendorID uuid.UUID) {
			defer wg.Done()
			bucket := buildBucket(bucketInput{
				vendorID:            vendorID,
				offers:              byVendor[vendorID],
				requested:           requested,
				globallyUnavailable: globallyUnavailable,
				medicines:           medicines,
				substitutes:         subs,
				deliveryCharge:      s.deliveryCharge,
				deliveryEstimate:    s.deliveryEstimate,
			})
			if bucket != nil {
				info := infos[vendorID]
				bucket.VendorName = info.Name
				bucket.VendorLogo = info.Logo
				bucket.Name = bucketDisplayName(vendorID, info.Name)
			}
			buckets[i] = bucket
		}(i, vendorID)
	}
	wg.Wait()

	if tolerated != nil {
		s.logg.Warn(ctx, fmt.Sprintf("allocation continued past collaborator failures: %v", tolerated))
	}

	out := make([]Bucket, 0, len(buckets))
	for _, bucket := range buckets {
		if bucket != nil {
			out = append(out, *bucket)
		}
	}
	return out, nil
}

// groupOffers dedupes stock rows into one offer per (vendor, medicine). Rows
// arrive ordered by id so the first row wins when duplicates exist. It also
// reports which medicines are carried by anyone at all, regardless of the
// vendor restriction.
func groupOffers(stocks []models.Stock, restrictTo map[uuid.UUID]struct{}) (map[uuid.UUID]map[uuid.UUID]offer, map[uuid.UUID]struct{}) {
	byVendor := make(map[uuid.UUID]map[uuid.UUID]offer)
	carried := make(map[uuid.UUID]struct{})

	for _, row := range stocks {
		carried[row.MedicineID] = struct{}{}

		if restrictTo != nil {
			if _, ok := restrictTo[row.VendorID]; !ok {
				continue
			}
		}

		vendorOffers, ok := byVendor[row.VendorID]
		if !ok {
			vendorOffers = make(map[uuid.UUID]offer)
			byVendor[row.VendorID] = vendorOffers
		}
		if _, dup := vendorOffers[row.MedicineID]; dup {
			continue
		}
		vendorOffers[row.MedicineID] = offer{
			vendorID:        row.VendorID,
			medicineID:      row.MedicineID,
			mrp:             row.MRP,
			discountPercent: row.DiscountPercent,
			quantity:        row.Quantity,
		}
	}
	return byVendor, carried
}

// substitutesFor fetches substitutes once per medicine that at least one
// evaluated vendor cannot fulfil. Lookup failures degrade to an empty list.
func (s *service) substitutesFor(
	ctx context.Context,
	requested []RequestedItem,
	byVendor map[uuid.UUID]map[uuid.UUID]offer,
	globallyUnavailable map[uuid.UUID]struct{},
	tolerated *error,
) map[uuid.UUID][]substitutes.Candidate {
	needed := make(map[uuid.UUID]struct{})
	for _, item := range requested {
		if _, ok := globallyUnavailable[item.MedicineID]; ok {
			needed[item.MedicineID] = struct{}{}
			continue
		}
		for _, offers := range byVendor {
			off, carried := offers[item.MedicineID]
			if !carried || off.quantity < item.Quantity {
				needed[item.MedicineID] = struct{}{}
				break
			}
		}
	}

	out := make(map[uuid.UUID][]substitutes.Candidate, len(needed))
	for id := range needed {
		candidates, err := s.subs.FindSubstitutes(ctx, id, substitutes.OrderByPrice)
		if err != nil {
			*tolerated = multierr.Append(*tolerated, fmt.Errorf("substitutes for %s: %w", id, err))
			s.metrics.IncPartialFailure("substitute_lookup")
			continue
		}
		out[id] = candidates
	}
	return out
}

// bucketDisplayName labels the bucket for presentation. Falls back to the
// vendor id when the directory has no name for it.
func bucketDisplayName(vendorID uuid.UUID, vendorName string) string {
	if vendorName == "" {
		return fmt.Sprintf("Complete bucket from vendor %s", vendorID)
	}
	return fmt.Sprintf("Complete bucket from %s", vendorName)
}

// lookupVendors resolves display metadata for every evaluated vendor. Misses
// and failures degrade to empty strings.
func (s *service) lookupVendors(ctx context.Context, vendorIDs []uuid.UUID, tolerated *error) map[uuid.UUID]vendors.Info {
	out := make(map[uuid.UUID]vendors.Info, len(vendorIDs))
	for _, id := range vendorIDs {
		info, err := s.directory.Lookup(ctx, id)
		if err != nil {
			*tolerated = multierr.Append(*tolerated, fmt.Errorf("vendor %s: %w", id, err))
			s.metrics.IncPartialFailure("vendor_lookup")
			out[id] = vendors.Info{ID: id}
			continue
		}
		out[id] = info
	}
	return out
}

// persistSelection writes the winning vendor onto the pre-order. Failures are
// logged and reported through the result, never through the error return.
func (s *service) persistSelection(ctx context.Context, preOrderID uuid.UUID, winner Bucket) bool {
	ctx = s.logg.WithPreOrderID(ctx, preOrderID.String())

	if s.orders == nil {
		s.logg.Warn(ctx, "no order store configured, skipping vendor write-back")
		return false
	}

	if _, err := s.orders.FindByID(ctx, preOrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(ctx, "pre-order not found, skipping vendor write-back")
		} else {
			s.logg.Error(ctx, "loading pre-order for vendor write-back", err)
		}
		s.metrics.IncPartialFailure("selection_persist")
		return false
	}

	payload, err := json.Marshal(preorders.Selection{
		VendorID:    winner.VendorID,
		VendorName:  winner.VendorName,
		VendorLogo:  winner.VendorLogo,
		AmountToPay: winner.PayableTotal.String(),
	})
	if err != nil {
		s.logg.Error(ctx, "encoding vendor selection", err)
		s.metrics.IncPartialFailure("selection_persist")
		return false
	}

	if err := s.orders.SaveSelection(ctx, preOrderID, winner.VendorID, payload); err != nil {
		s.logg.Error(ctx, "saving vendor selection", err)
		s.metrics.IncPartialFailure("selection_persist")
		return false
	}
	return true
}
