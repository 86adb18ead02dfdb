package allocation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tregohealth/trego-backend/internal/substitutes"
	"github.com/tregohealth/trego-backend/pkg/db/models"
	"github.com/tregohealth/trego-backend/pkg/pricing"
)

// Reason explains why a vendor cannot fulfil a requested line.
type Reason string

const (
	// ReasonNotCarried means this vendor has no offer for the medicine,
	// though some other vendor does.
	ReasonNotCarried Reason = "NOT_CARRIED"
	// ReasonInsufficientQuantity means the vendor stocks the medicine but
	// below the requested quantity.
	ReasonInsufficientQuantity Reason = "INSUFFICIENT_QUANTITY"
	// ReasonNotCarriedByAnyVendor means no vendor in the catalog offers the
	// medicine at all.
	ReasonNotCarriedByAnyVendor Reason = "NOT_CARRIED_BY_ANY_VENDOR"
)

// LineItem is a requested medicine this vendor can fully supply.
type LineItem struct {
	MedicineID        uuid.UUID       `json:"medicineId"`
	Name              string          `json:"name"`
	Image             string          `json:"image,omitempty"`
	Packing           string          `json:"packing,omitempty"`
	MRP               decimal.Decimal `json:"mrp"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	DiscountPercent   decimal.Decimal `json:"discountPercent"`
	AvailableQuantity int             `json:"availableQuantity"`
	RequestedQuantity int             `json:"requestedQuantity"`
	LineTotal         decimal.Decimal `json:"lineTotal"`
	GrossLineTotal    decimal.Decimal `json:"grossLineTotal"`
}

// UnavailableItem is a requested medicine this vendor cannot supply, with the
// reason and up to two substitutes the user could switch to.
type UnavailableItem struct {
	MedicineID        uuid.UUID               `json:"medicineId"`
	Name              string                  `json:"name"`
	Image             string                  `json:"image,omitempty"`
	RequestedQuantity int                     `json:"requestedQuantity"`
	AvailableQuantity int                     `json:"availableQuantity"`
	Reason            Reason                  `json:"reason"`
	Substitutes       []substitutes.Candidate `json:"substitutes"`
}

// Bucket is one vendor's answer to the full requested list.
type Bucket struct {
	VendorID         uuid.UUID         `json:"vendorId"`
	Name             string            `json:"name"`
	VendorName       string            `json:"vendorName"`
	VendorLogo       string            `json:"vendorLogo"`
	AvailableItems   []LineItem        `json:"availableItems"`
	UnavailableItems []UnavailableItem `json:"unavailableItems"`
	GrossTotal       decimal.Decimal   `json:"grossTotal"`
	DiscountTotal    decimal.Decimal   `json:"discountTotal"`
	DeliveryCharge   decimal.Decimal   `json:"deliveryCharge"`
	PayableTotal     decimal.Decimal   `json:"payableTotal"`
	DeliveryEstimate string            `json:"deliveryEstimate"`
}

// offer is one vendor's deduplicated stock row for a medicine.
type offer struct {
	vendorID        uuid.UUID
	medicineID      uuid.UUID
	mrp             decimal.Decimal
	discountPercent decimal.Decimal
	quantity        int
}

type bucketInput struct {
	vendorID            uuid.UUID
	offers              map[uuid.UUID]offer
	requested           []RequestedItem
	globallyUnavailable map[uuid.UUID]struct{}
	medicines           map[uuid.UUID]models.Medicine
	substitutes         map[uuid.UUID][]substitutes.Candidate
	deliveryCharge      decimal.Decimal
	deliveryEstimate    string
}

// buildBucket evaluates one vendor against the full requested list. Every
// requested medicine lands in exactly one of the two item lists. Returns nil
// when the vendor relates to none of the request.
func buildBucket(in bucketInput) *Bucket {
	bucket := &Bucket{
		VendorID:         in.vendorID,
		GrossTotal:       decimal.Zero,
		DiscountTotal:    decimal.Zero,
		DeliveryCharge:   in.deliveryCharge,
		DeliveryEstimate: in.deliveryEstimate,
	}

	for _, item := range in.requested {
		medicine := in.medicines[item.MedicineID]

		if _, unavailable := in.globallyUnavailable[item.MedicineID]; unavailable {
			bucket.UnavailableItems = append(bucket.UnavailableItems, UnavailableItem{
				MedicineID:        item.MedicineID,
				Name:              medicine.Name,
				Image:             medicine.PrimaryPhoto(),
				RequestedQuantity: item.Quantity,
				Reason:            ReasonNotCarriedByAnyVendor,
				Substitutes:       in.substitutes[item.MedicineID],
			})
			continue
		}

		off, carried := in.offers[item.MedicineID]
		if !carried {
			bucket.UnavailableItems = append(bucket.UnavailableItems, UnavailableItem{
				MedicineID:        item.MedicineID,
				Name:              medicine.Name,
				Image:             medicine.PrimaryPhoto(),
				RequestedQuantity: item.Quantity,
				Reason:            ReasonNotCarried,
				Substitutes:       in.substitutes[item.MedicineID],
			})
			continue
		}

		if off.quantity < item.Quantity {
			bucket.UnavailableItems = append(bucket.UnavailableItems, UnavailableItem{
				MedicineID:        item.MedicineID,
				Name:              medicine.Name,
				Image:             medicine.PrimaryPhoto(),
				RequestedQuantity: item.Quantity,
				AvailableQuantity: off.quantity,
				Reason:            ReasonInsufficientQuantity,
				Substitutes:       in.substitutes[item.MedicineID],
			})
			continue
		}

		unitPrice := pricing.UnitPrice(off.mrp, off.discountPercent)
		lineTotal := pricing.LineTotal(off.mrp, off.discountPercent, item.Quantity)
		grossLineTotal := pricing.GrossLineTotal(off.mrp, item.Quantity)

		bucket.AvailableItems = append(bucket.AvailableItems, LineItem{
			MedicineID:        item.MedicineID,
			Name:              medicine.Name,
			Image:             medicine.PrimaryPhoto(),
			Packing:           medicine.Packing,
			MRP:               off.mrp,
			UnitPrice:         unitPrice,
			DiscountPercent:   off.discountPercent,
			AvailableQuantity: off.quantity,
			RequestedQuantity: item.Quantity,
			LineTotal:         lineTotal,
			GrossLineTotal:    grossLineTotal,
		})
		bucket.GrossTotal = bucket.GrossTotal.Add(grossLineTotal)
		bucket.DiscountTotal = bucket.DiscountTotal.Add(grossLineTotal.Sub(lineTotal))
	}

	if len(bucket.AvailableItems) == 0 && len(bucket.UnavailableItems) == 0 {
		return nil
	}

	bucket.PayableTotal = bucket.GrossTotal.Sub(bucket.DiscountTotal).Add(bucket.DeliveryCharge)
	return bucket
}
