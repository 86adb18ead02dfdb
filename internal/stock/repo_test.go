package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/pkg/db/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS stocks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  vendor_id TEXT NOT NULL,
  medicine_id TEXT NOT NULL,
  mrp NUMERIC NOT NULL,
  discount_percent NUMERIC NOT NULL DEFAULT 0,
  quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestOffersForReturnsRowsOrderedByID(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)

	vendor := uuid.New()
	medicine := uuid.New()
	other := uuid.New()

	rows := []models.Stock{
		{VendorID: vendor, MedicineID: medicine, MRP: dec("15"), DiscountPercent: dec("10"), Quantity: 100},
		{VendorID: vendor, MedicineID: medicine, MRP: dec("99"), DiscountPercent: dec("0"), Quantity: 1},
		{VendorID: vendor, MedicineID: other, MRP: dec("8"), DiscountPercent: dec("5"), Quantity: 30},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	got, err := repo.OffersFor(context.Background(), []uuid.UUID{medicine})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// ordered by row id, duplicate pair keeps insertion order
	assert.True(t, got[0].ID < got[1].ID)
	assert.True(t, got[0].MRP.Equal(dec("15")))
	for _, row := range got {
		assert.Equal(t, medicine, row.MedicineID)
	}
}

func TestOffersForEmptyInput(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)

	got, err := repo.OffersFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
