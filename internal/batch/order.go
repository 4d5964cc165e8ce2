// Package batch holds the pending shipment batch and its submission logic.
package batch

import "errors"

// ErrOrderNotFound is returned when a finalized order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// PendingOrder is the locally accumulated batch of items not yet submitted
// to the carrier. The zero batch has a nil id and status and no items.
type PendingOrder struct {
	ID     *string `json:"id"`
	Status *string `json:"status"`

	// Items maps item barcodes to their originating source-order ids.
	// A barcode is unique within the batch; re-adding one overwrites the
	// mapping.
	Items map[string]string `json:"items"`

	Shipments []Shipment `json:"shipments"`
}

// NewPendingOrder returns the default empty batch record.
func NewPendingOrder() *PendingOrder {
	return &PendingOrder{
		Items:     make(map[string]string),
		Shipments: []Shipment{},
	}
}

// FinalizedOrder is the carrier-acknowledged, immutable record of a
// submitted batch, keyed by the remote order id.
type FinalizedOrder struct {
	ID        string            `json:"id"`
	Status    string            `json:"status,omitempty"`
	Items     map[string]string `json:"items"`
	Shipments []Shipment        `json:"shipments"`
}

// Shipment is one physical parcel (AWB) returned by the carrier.
type Shipment struct {
	AWB   string         `json:"awb"`
	Items []ShipmentItem `json:"items"`
}

// ShipmentItem references an item contained in a shipment by barcode.
type ShipmentItem struct {
	Barcode string `json:"barcode"`
}
