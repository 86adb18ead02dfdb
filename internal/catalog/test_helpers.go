package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/pkg/db/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedMedicine(t *testing.T, db *gorm.DB, name, composition string) models.Medicine {
	t.Helper()

	medicine := models.Medicine{
		ID:              uuid.New(),
		Name:            name,
		SaltComposition: composition,
	}
	require.NoError(t, db.Create(&medicine).Error)
	t.Cleanup(func() {
		db.Delete(&models.Medicine{}, "id = ?", medicine.ID)
	})
	return medicine
}

func seedStock(t *testing.T, db *gorm.DB, vendorID, medicineID uuid.UUID, mrp, discount string, qty int) models.Stock {
	t.Helper()

	stock := models.Stock{
		VendorID:        vendorID,
		MedicineID:      medicineID,
		MRP:             dec(mrp),
		DiscountPercent: dec(discount),
		Quantity:        qty,
	}
	require.NoError(t, db.Create(&stock).Error)
	t.Cleanup(func() {
		db.Delete(&models.Stock{}, "id = ?", stock.ID)
	})
	return stock
}
