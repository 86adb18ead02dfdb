package substitutes

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tregohealth/trego-backend/internal/catalog"
	"github.com/tregohealth/trego-backend/pkg/db/models"
	pkgerrors "github.com/tregohealth/trego-backend/pkg/errors"
	"github.com/tregohealth/trego-backend/pkg/logger"
)

type stubSource struct {
	medicine *models.Medicine
	findErr  error
	rows     []catalog.SubstituteRow
	rowsErr  error
}

func (s *stubSource) FindByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.medicine, nil
}

func (s *stubSource) SubstituteCandidates(ctx context.Context, medicineID uuid.UUID) ([]catalog.SubstituteRow, error) {
	if s.rowsErr != nil {
		return nil, s.rowsErr
	}
	return s.rows, nil
}

func newTestService(t *testing.T, source *stubSource) Service {
	t.Helper()

	svc, err := NewService(source, logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func row(name, mrp, discount string) catalog.SubstituteRow {
	return catalog.SubstituteRow{
		MedicineID:      uuid.New(),
		Name:            name,
		VendorID:        uuid.New(),
		VendorName:      "Pharma Depot",
		MRP:             dec(mrp),
		DiscountPercent: dec(discount),
	}
}

func TestFindSubstitutesOrderByPrice(t *testing.T) {
	t.Parallel()

	// effective prices: 13.5, 10.2, 12.0
	source := &stubSource{
		medicine: &models.Medicine{ID: uuid.New()},
		rows: []catalog.SubstituteRow{
			row("Paracin 500", "15", "10"),
			row("Febrinil", "12", "15"),
			row("Calpar", "12", "0"),
		},
	}
	svc := newTestService(t, source)

	got, err := svc.FindSubstitutes(context.Background(), source.medicine.ID, OrderByPrice)
	if err != nil {
		t.Fatalf("FindSubstitutes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Name != "Febrinil" || got[1].Name != "Calpar" {
		t.Fatalf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}
	if !got[0].BestPrice.Equal(dec("10.2")) {
		t.Fatalf("expected best price 10.2, got %s", got[0].BestPrice)
	}
}

func TestFindSubstitutesOrderByDiscountDesc(t *testing.T) {
	t.Parallel()

	source := &stubSource{
		medicine: &models.Medicine{ID: uuid.New()},
		rows: []catalog.SubstituteRow{
			row("Paracin 500", "15", "10"),
			row("Febrinil", "12", "15"),
			row("Calpar", "12", "0"),
		},
	}
	svc := newTestService(t, source)

	got, err := svc.FindSubstitutes(context.Background(), source.medicine.ID, OrderByDiscountDesc)
	if err != nil {
		t.Fatalf("FindSubstitutes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Name != "Febrinil" || got[1].Name != "Paracin 500" {
		t.Fatalf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestFindSubstitutesEqualPriceTieBreaksOnID(t *testing.T) {
	t.Parallel()

	a := row("Alpha", "10", "0")
	b := row("Beta", "10", "0")
	source := &stubSource{
		medicine: &models.Medicine{ID: uuid.New()},
		rows:     []catalog.SubstituteRow{b, a},
	}
	svc := newTestService(t, source)

	got, err := svc.FindSubstitutes(context.Background(), source.medicine.ID, OrderByPrice)
	if err != nil {
		t.Fatalf("FindSubstitutes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].MedicineID.String() > got[1].MedicineID.String() {
		t.Fatalf("expected id-ascending tie break, got %s before %s", got[0].MedicineID, got[1].MedicineID)
	}
}

func TestFindSubstitutesExcludesOriginalAndCapsAtTwo(t *testing.T) {
	t.Parallel()

	original := uuid.New()
	source := &stubSource{
		medicine: &models.Medicine{ID: original},
		rows: []catalog.SubstituteRow{
			row("A", "10", "0"),
			row("B", "11", "0"),
			row("C", "12", "0"),
			row("D", "13", "0"),
		},
	}
	svc := newTestService(t, source)

	got, err := svc.FindSubstitutes(context.Background(), original, OrderByPrice)
	if err != nil {
		t.Fatalf("FindSubstitutes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(got))
	}
	for _, c := range got {
		if c.MedicineID == original {
			t.Fatalf("candidate list contains the original medicine")
		}
	}
}

func TestFindSubstitutesMedicineNotFound(t *testing.T) {
	t.Parallel()

	source := &stubSource{findErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, source)

	_, err := svc.FindSubstitutes(context.Background(), uuid.New(), OrderByPrice)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestFindSubstitutesCandidateLookupFailure(t *testing.T) {
	t.Parallel()

	source := &stubSource{
		medicine: &models.Medicine{ID: uuid.New()},
		rowsErr:  errors.New("query timeout"),
	}
	svc := newTestService(t, source)

	_, err := svc.FindSubstitutes(context.Background(), source.medicine.ID, OrderByPrice)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestParseOrderBy(t *testing.T) {
	t.Parallel()

	if got, err := ParseOrderBy(""); err != nil || got != OrderByPrice {
		t.Fatalf("empty should default to price, got %v %v", got, err)
	}
	if got, err := ParseOrderBy("Discount"); err != nil || got != OrderByDiscountDesc {
		t.Fatalf("expected discount, got %v %v", got, err)
	}
	if _, err := ParseOrderBy("rating"); err == nil {
		t.Fatal("expected validation error for unknown ordering")
	}
}
