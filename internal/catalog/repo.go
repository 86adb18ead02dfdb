package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/pkg/db/models"
)

// SubstituteRow is the raw projection for a substitute candidate: the medicine,
// the vendor holding its cheapest in-stock offer, and that offer's pricing.
type SubstituteRow struct {
	MedicineID      uuid.UUID       `gorm:"column:medicine_id"`
	Name            string          `gorm:"column:name"`
	Manufacturer    string          `gorm:"column:manufacturer"`
	Packing         string          `gorm:"column:packing"`
	VendorID        uuid.UUID       `gorm:"column:vendor_id"`
	VendorName      string          `gorm:"column:vendor_name"`
	VendorLogo      string          `gorm:"column:vendor_logo"`
	MRP             decimal.Decimal `gorm:"column:mrp"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent"`
}

const substituteCandidatesQuery = `
SELECT m.id AS medicine_id,
       m.name,
       m.manufacturer,
       m.packing,
       best.vendor_id,
       v.name AS vendor_name,
       v.logo AS vendor_logo,
       best.mrp,
       best.discount_percent
FROM medicines m
JOIN LATERAL (
  SELECT s.vendor_id, s.mrp, s.discount_percent
  FROM stocks s
  WHERE s.medicine_id = m.id AND s.quantity > 0
  ORDER BY s.mrp * (1 - s.discount_percent / 100) ASC, s.id ASC
  LIMIT 1
) best ON true
JOIN vendors v ON v.id = best.vendor_id
WHERE m.salt_composition = (SELECT salt_composition FROM medicines WHERE id = ?)
  AND m.salt_composition <> ''
  AND m.id <> ?
`

// Repository loads medicines and substitute candidates.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a single medicine.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	var medicine models.Medicine
	if err := r.db.WithContext(ctx).First(&medicine, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &medicine, nil
}

// FindByIDs loads the requested medicines keyed by id. Missing ids are simply
// absent from the map; callers decide whether that is an error.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Medicine, error) {
	out := make(map[uuid.UUID]models.Medicine, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var medicines []models.Medicine
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&medicines).Error; err != nil {
		return nil, err
	}
	for _, m := range medicines {
		out[m.ID] = m
	}
	return out, nil
}

// SubstituteCandidates returns every medicine sharing the salt composition of
// medicineID (excluding medicineID itself) together with its cheapest in-stock
// vendor offer. Ordering and truncation are the caller's concern.
func (r *Repository) SubstituteCandidates(ctx context.Context, medicineID uuid.UUID) ([]SubstituteRow, error) {
	var rows []SubstituteRow
	if err := r.db.WithContext(ctx).
		Raw(substituteCandidatesQuery, medicineID, medicineID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
