package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is one vendor's offer for one medicine. A (vendor, medicine) pair is
// expected to be unique but duplicate rows from legacy imports are tolerated;
// readers must order by row id and keep the first.
type Stock struct {
	ID              int64           `gorm:"column:id;primaryKey;autoIncrement"`
	VendorID        uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null;index"`
	MedicineID      uuid.UUID       `gorm:"column:medicine_id;type:uuid;not null;index"`
	MRP             decimal.Decimal `gorm:"column:mrp;type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	Quantity        int             `gorm:"column:quantity;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
