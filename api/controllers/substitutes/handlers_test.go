package substitutes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	substitutesvc "github.com/tregohealth/trego-backend/internal/substitutes"
	pkgerrors "github.com/tregohealth/trego-backend/pkg/errors"
)

type stubResolver struct {
	candidates []substitutesvc.Candidate
	err        error
	gotOrderBy substitutesvc.OrderBy
}

func (s *stubResolver) FindSubstitutes(ctx context.Context, medicineID uuid.UUID, orderBy substitutesvc.OrderBy) ([]substitutesvc.Candidate, error) {
	s.gotOrderBy = orderBy
	return s.candidates, s.err
}

func newRequest(t *testing.T, target string, medicineID string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("medicineId", medicineID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestListSuccess(t *testing.T) {
	candidate := substitutesvc.Candidate{MedicineID: uuid.New(), Name: "Febrinil"}
	svc := &stubResolver{candidates: []substitutesvc.Candidate{candidate}}
	handler := List(svc, nil)

	req := newRequest(t, "/api/v1/substitutes/x?order_by=discount", uuid.NewString())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotOrderBy != substitutesvc.OrderByDiscountDesc {
		t.Fatalf("expected discount ordering, got %s", svc.gotOrderBy)
	}

	var envelope struct {
		Data []substitutesvc.Candidate `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Name != "Febrinil" {
		t.Fatalf("unexpected candidates: %+v", envelope.Data)
	}
}

func TestListInvalidMedicineID(t *testing.T) {
	handler := List(&stubResolver{}, nil)

	req := newRequest(t, "/api/v1/substitutes/nope", "nope")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListInvalidOrderBy(t *testing.T) {
	handler := List(&stubResolver{}, nil)

	req := newRequest(t, "/api/v1/substitutes/x?order_by=rating", uuid.NewString())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListMedicineNotFound(t *testing.T) {
	svc := &stubResolver{err: pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")}
	handler := List(svc, nil)

	req := newRequest(t, "/api/v1/substitutes/x", uuid.NewString())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
