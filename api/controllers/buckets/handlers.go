package buckets

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tregohealth/trego-backend/api/responses"
	"github.com/tregohealth/trego-backend/api/validators"
	"github.com/tregohealth/trego-backend/internal/allocation"
	pkgerrors "github.com/tregohealth/trego-backend/pkg/errors"
	"github.com/tregohealth/trego-backend/pkg/logger"
)

type allocateItem struct {
	MedicineID uuid.UUID `json:"medicineId" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
}

type allocateRequest struct {
	Items []allocateItem `json:"items" validate:"required,min=1,dive"`
}

type subCartPayload struct {
	VendorID uuid.UUID      `json:"vendorId" validate:"required"`
	Items    []allocateItem `json:"items" validate:"required,min=1,dive"`
}

type preOrderRequest struct {
	PreOrderID *uuid.UUID       `json:"preOrderId,omitempty"`
	SubCarts   []subCartPayload `json:"subCarts" validate:"required,min=1,dive"`
}

type preOrderResponse struct {
	Buckets            []allocation.Bucket `json:"buckets"`
	SelectionPersisted bool                `json:"selectionPersisted"`
}

// Allocate builds vendor buckets for an ad-hoc requested item list.
func Allocate(svc allocation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allocation service unavailable"))
			return
		}

		var payload allocateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		buckets, err := svc.Allocate(r.Context(), toRequestedItems(payload.Items))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, buckets)
	}
}

// AllocateFromCart builds buckets restricted to the cart's vendors and, when a
// pre-order is referenced, records the winning vendor on it.
func AllocateFromCart(svc allocation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allocation service unavailable"))
			return
		}

		var payload preOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot := allocation.CartSnapshot{PreOrderID: payload.PreOrderID}
		for _, sub := range payload.SubCarts {
			snapshot.SubCarts = append(snapshot.SubCarts, allocation.SubCart{
				VendorID: sub.VendorID,
				Items:    toRequestedItems(sub.Items),
			})
		}

		result, err := svc.AllocateFromCart(r.Context(), snapshot)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, preOrderResponse{
			Buckets:            result.Buckets,
			SelectionPersisted: result.SelectionPersisted,
		})
	}
}

func toRequestedItems(items []allocateItem) []allocation.RequestedItem {
	out := make([]allocation.RequestedItem, 0, len(items))
	for _, item := range items {
		out = append(out, allocation.RequestedItem{MedicineID: item.MedicineID, Quantity: item.Quantity})
	}
	return out
}
