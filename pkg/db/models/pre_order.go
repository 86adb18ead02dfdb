package models

import (
	"time"

	"github.com/google/uuid"
)

// PreOrder is the persisted multi-vendor cart snapshot. The allocation engine
// only ever touches SelectedVendorID and the cached Payload summary; the rest
// belongs to the order-management flow.
type PreOrder struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserRef          string     `gorm:"column:user_ref"`
	Status           string     `gorm:"column:status;not null;default:'open'"`
	SelectedVendorID *uuid.UUID `gorm:"column:selected_vendor_id;type:uuid"`
	Payload          []byte     `gorm:"column:payload;type:jsonb"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
