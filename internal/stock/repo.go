package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/pkg/db/models"
)

// Repository reads vendor stock rows.
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

// OffersFor returns every stock row covering the requested medicines, ordered
// by row id ascending. Duplicate rows for the same (vendor, medicine) pair can
// exist; the stable ordering lets callers keep the first and drop the rest.
func (r *Repository) OffersFor(ctx context.Context, medicineIDs []uuid.UUID) ([]models.Stock, error) {
	if len(medicineIDs) == 0 {
		return nil, nil
	}

	var stocks []models.Stock
	if err := r.db.WithContext(ctx).
		Where("medicine_id IN ?", medicineIDs).
		Order("id ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}
