package substitutes

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/internal/catalog"
	"github.com/tregohealth/trego-backend/pkg/db/models"
	pkgerrors "github.com/tregohealth/trego-backend/pkg/errors"
	"github.com/tregohealth/trego-backend/pkg/logger"
	"github.com/tregohealth/trego-backend/pkg/pricing"
)

// maxCandidates caps every substitute list.
const maxCandidates = 2

// OrderBy selects the candidate ordering.
type OrderBy string

const (
	OrderByPrice        OrderBy = "price"
	OrderByDiscountDesc OrderBy = "discount"
)

// ParseOrderBy maps a query-string value onto an OrderBy, defaulting to price.
func ParseOrderBy(value string) (OrderBy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(OrderByPrice):
		return OrderByPrice, nil
	case string(OrderByDiscountDesc):
		return OrderByDiscountDesc, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order_by must be price or discount")
	}
}

// Candidate is a replacement medicine offered at its cheapest vendor price.
type Candidate struct {
	MedicineID      uuid.UUID       `json:"medicineId"`
	Name            string          `json:"name"`
	Manufacturer    string          `json:"manufacturer"`
	Packing         string          `json:"packing"`
	VendorID        uuid.UUID       `json:"vendorId"`
	VendorName      string          `json:"vendorName"`
	VendorLogo      string          `json:"vendorLogo"`
	MRP             decimal.Decimal `json:"mrp"`
	BestPrice       decimal.Decimal `json:"bestPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

type candidateSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
	SubstituteCandidates(ctx context.Context, medicineID uuid.UUID) ([]catalog.SubstituteRow, error)
}

// Service resolves substitute medicines sharing a salt composition.
type Service interface {
	FindSubstitutes(ctx context.Context, medicineID uuid.UUID, orderBy OrderBy) ([]Candidate, error)
}

type service struct {
	source candidateSource
	logg   *logger.Logger
}

// NewService builds the substitute resolver.
func NewService(source candidateSource, logg *logger.Logger) (Service, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "candidate source is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{source: source, logg: logg}, nil
}

func (s *service) FindSubstitutes(ctx context.Context, medicineID uuid.UUID, orderBy OrderBy) ([]Candidate, error) {
	ctx = s.logg.WithMedicineID(ctx, medicineID.String())

	if _, err := s.source.FindByID(ctx, medicineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading medicine")
	}

	rows, err := s.source.SubstituteCandidates(ctx, medicineID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading substitute candidates")
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, Candidate{
			MedicineID:      row.MedicineID,
			Name:            row.Name,
			Manufacturer:    row.Manufacturer,
			Packing:         row.Packing,
			VendorID:        row.VendorID,
			VendorName:      row.VendorName,
			VendorLogo:      row.VendorLogo,
			MRP:             row.MRP,
			BestPrice:       pricing.UnitPrice(row.MRP, row.DiscountPercent),
			DiscountPercent: row.DiscountPercent,
		})
	}

	sortCandidates(candidates, orderBy)
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates, nil
}

func sortCandidates(candidates []Candidate, orderBy OrderBy) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch orderBy {
		case OrderByDiscountDesc:
			if !a.DiscountPercent.Equal(b.DiscountPercent) {
				return a.DiscountPercent.GreaterThan(b.DiscountPercent)
			}
		default:
			if !a.BestPrice.Equal(b.BestPrice) {
				return a.BestPrice.LessThan(b.BestPrice)
			}
		}
		return a.MedicineID.String() < b.MedicineID.String()
	})
}
