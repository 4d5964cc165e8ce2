package dhlecs

import (
	"context"
)

// APIClient defines the interface for DHL eCS API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// CreateItem registers a new item (parcel) with the carrier
	CreateItem(ctx context.Context, req *ItemRequest) (*ItemResponse, error)

	// DeleteItem removes a previously created item
	DeleteItem(ctx context.Context, itemID string) error

	// GetItems lists the items currently known to the carrier
	GetItems(ctx context.Context) ([]ItemResponse, error)

	// CreateOrder submits a batch of item barcodes as a shipping order
	CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error)

	// GetItemLabel retrieves the label payload for an item by barcode
	GetItemLabel(ctx context.Context, barcode string) (*LabelResponse, error)

	// GetTracking retrieves tracking information for a shipment AWB
	GetTracking(ctx context.Context, awb string) (*TrackingResponse, error)
}

// ============================================================================
// API Request/Response Types (match DHL eCS REST API structure)
// ============================================================================

// ItemRequest represents an item creation request.
// POST dpi/shipping/v1/customers/{ekp}/items
type ItemRequest struct {
	ServiceLevel        string         `json:"serviceLevel"` // Always "PRIORITY"
	Product             string         `json:"product"`
	CustRef             string         `json:"custRef,omitempty"`
	CustRef2            string         `json:"custRef2,omitempty"`
	ShipmentAmount      float64        `json:"shipmentAmount"`
	ShipmentCurrency    string         `json:"shipmentCurrency"`
	ShipmentGrossWeight float64        `json:"shipmentGrossWeight"`
	ShipmentNaturetype  string         `json:"shipmentNaturetype,omitempty"`
	Recipient           string         `json:"recipient"`
	RecipientPhone      string         `json:"recipientPhone,omitempty"`
	RecipientEmail      string         `json:"recipientEmail,omitempty"`
	AddressLine1        string         `json:"addressLine1"`
	AddressLine2        string         `json:"addressLine2,omitempty"`
	City                string         `json:"city"`
	PostalCode          string         `json:"postalCode"`
	State               string         `json:"state,omitempty"`
	DestinationCountry  string         `json:"destinationCountry"`
	Contents            []ContentPiece `json:"contents,omitempty"`
}

// ContentPiece is one content line of an item, used for customs declarations.
type ContentPiece struct {
	Amount      int     `json:"contentPieceAmount"`
	Description string  `json:"contentPieceDescription"`
	IndexNumber string  `json:"contentPieceIndexNumber,omitempty"`
	NetWeight   float64 `json:"contentPieceNetweight"`
	Origin      string  `json:"contentPieceOrigin,omitempty"`
	Value       float64 `json:"contentPieceValue"`
	HSCode      string  `json:"contentPieceHsCode,omitempty"`
}

// ItemResponse represents a created item as returned by the carrier.
type ItemResponse struct {
	ID      string `json:"id"`
	Barcode string `json:"barcode"`
}

// OrderRequest represents an order creation request.
// POST dpi/shipping/v1/customers/{ekp}/orders
type OrderRequest struct {
	ItemBarcodes []string  `json:"itemBarcodes"`
	Paperwork    Paperwork `json:"paperwork"`
}

// Paperwork holds the order-level paperwork metadata.
type Paperwork struct {
	AWBCopyCount int    `json:"awbCopyCount"`
	ContactName  string `json:"contactName"`
}

// OrderResponse represents an order creation response.
type OrderResponse struct {
	OrderID     string         `json:"orderId"`
	OrderStatus string         `json:"orderStatus,omitempty"`
	Shipments   []ShipmentInfo `json:"shipments"`
}

// ShipmentInfo is one physical shipment within a created order.
type ShipmentInfo struct {
	AWB   string             `json:"awb"`
	Items []ShipmentItemInfo `json:"items"`
}

// ShipmentItemInfo references an item contained in a shipment.
type ShipmentItemInfo struct {
	Barcode string `json:"barcode"`
}

// LabelResponse is the carrier's label payload envelope.
// GET dpi/shipping/v1/customers/{ekp}/items/{barcode}/label
type LabelResponse struct {
	LabelResponse LabelEnvelope `json:"labelResponse"`
}

// LabelEnvelope wraps the label business data.
type LabelEnvelope struct {
	BD LabelBD `json:"bd"`
}

// LabelBD carries the response status and the label records.
type LabelBD struct {
	ResponseStatus ResponseStatus `json:"responseStatus"`
	Labels         []LabelRecord  `json:"labels"`
}

// ResponseStatus is the carrier's structured status for label responses.
type ResponseStatus struct {
	Code           int             `json:"code"`
	Message        string          `json:"message"`
	MessageDetails []MessageDetail `json:"messageDetails,omitempty"`
}

// MessageDetail is one detail line of a structured status.
type MessageDetail struct {
	MessageDetail string `json:"messageDetail"`
}

// LabelRecord is one label entry. The payload takes one of two shapes:
// a multi-piece record carrying a Pieces array, or a single-piece record
// carrying the content inline. Pieces being non-empty is the discriminator.
type LabelRecord struct {
	ShipmentID             string       `json:"shipmentID,omitempty"`
	DeliveryConfirmationNo string       `json:"deliveryConfirmationNo,omitempty"`
	Content                string       `json:"content,omitempty"` // base64 PDF data
	Pieces                 []LabelPiece `json:"pieces,omitempty"`
}

// LabelPiece is one physical piece of a multi-piece label.
type LabelPiece struct {
	ShipmentPieceID        string `json:"shipmentPieceID"`
	DeliveryConfirmationNo string `json:"deliveryConfirmationNo"`
	Content                string `json:"content"` // base64 PDF data
}

// TrackingResponse represents tracking information for a shipment.
// GET dpi/tracking/v1/trackings/awb/{awb}
type TrackingResponse struct {
	AWB    string          `json:"awb"`
	Status string          `json:"status,omitempty"`
	Events []TrackingEvent `json:"events,omitempty"`
}

// TrackingEvent is a single carrier tracking event.
type TrackingEvent struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status,omitempty"`
}
