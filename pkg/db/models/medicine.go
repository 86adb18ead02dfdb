package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Medicine is the canonical catalog entry substitutes are matched against.
type Medicine struct {
	ID                   uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                 string         `gorm:"column:name;not null"`
	Manufacturer         string         `gorm:"column:manufacturer"`
	SaltComposition      string         `gorm:"column:salt_composition;index"`
	Packing              string         `gorm:"column:packing"`
	PackagingType        *string        `gorm:"column:packaging_type"`
	Photos               pq.StringArray `gorm:"column:photos;type:text[]"`
	PrescriptionRequired bool           `gorm:"column:prescription_required;not null;default:false"`
	CreatedAt            time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// PrimaryPhoto returns the display image, if any was loaded.
func (m Medicine) PrimaryPhoto() string {
	if len(m.Photos) == 0 {
		return ""
	}
	return m.Photos[0]
}
