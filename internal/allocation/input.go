package allocation

import (
	"github.com/google/uuid"
)

// RequestedItem is one medicine the caller wants, with the quantity needed.
type RequestedItem struct {
	MedicineID uuid.UUID `json:"medicineId"`
	Quantity   int       `json:"quantity"`
}

// SubCart is the slice of a cart belonging to one vendor.
type SubCart struct {
	VendorID uuid.UUID       `json:"vendorId"`
	Items    []RequestedItem `json:"items"`
}

// CartSnapshot is a point-in-time copy of a user's cart. PreOrderID, when set,
// names the persisted order that receives the winning vendor as a side effect.
type CartSnapshot struct {
	PreOrderID *uuid.UUID `json:"preOrderId,omitempty"`
	SubCarts   []SubCart  `json:"subCarts"`
}

// normalizeRequested merges duplicate medicine ids by summing quantities and
// drops entries with zero or negative quantity. Order of first appearance is
// preserved so allocation output stays deterministic.
func normalizeRequested(items []RequestedItem) []RequestedItem {
	merged := make(map[uuid.UUID]int, len(items))
	order := make([]uuid.UUID, 0, len(items))

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if _, seen := merged[item.MedicineID]; !seen {
			order = append(order, item.MedicineID)
		}
		merged[item.MedicineID] += item.Quantity
	}

	out := make([]RequestedItem, 0, len(order))
	for _, id := range order {
		out = append(out, RequestedItem{MedicineID: id, Quantity: merged[id]})
	}
	return out
}

// flattenCart derives the merged requested items across every sub-cart and the
// set of vendors the user already picked.
func flattenCart(snapshot CartSnapshot) ([]RequestedItem, map[uuid.UUID]struct{}) {
	chosen := make(map[uuid.UUID]struct{}, len(snapshot.SubCarts))
	var all []RequestedItem
	for _, sub := range snapshot.SubCarts {
		chosen[sub.VendorID] = struct{}{}
		all = append(all, sub.Items...)
	}
	return normalizeRequested(all), chosen
}

func medicineIDs(items []RequestedItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MedicineID)
	}
	return ids
}
