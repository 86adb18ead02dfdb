package preorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/pkg/db/models"
)

// Selection is the JSON mirror of the vendor choice stored on the pre-order
// alongside the selected vendor id, so order history can render the choice
// without re-running allocation.
type Selection struct {
	VendorID    uuid.UUID `json:"vendorId"`
	VendorName  string    `json:"vendorName"`
	VendorLogo  string    `json:"vendorLogo"`
	AmountToPay string    `json:"amountToPay"`
}

// Repository persists pre-orders.
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

// FindByID loads a single pre-order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PreOrder, error) {
	var preOrder models.PreOrder
	if err := r.db.WithContext(ctx).First(&preOrder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &preOrder, nil
}

// Create inserts a new pre-order.
func (r *Repository) Create(ctx context.Context, preOrder *models.PreOrder) (*models.PreOrder, error) {
	if err := r.db.WithContext(ctx).Create(preOrder).Error; err != nil {
		return nil, err
	}
	return preOrder, nil
}

// SaveSelection records the chosen vendor and its JSON mirror on the
// pre-order.
func (r *Repository) SaveSelection(ctx context.Context, preOrderID uuid.UUID, vendorID uuid.UUID, payload []byte) error {
	return r.db.WithContext(ctx).
		Model(&models.PreOrder{}).
		Where("id = ?", preOrderID).
		Updates(map[string]any{
			"selected_vendor_id": vendorID,
			"payload":            payload,
		}).Error
}
