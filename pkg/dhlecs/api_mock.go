package dhlecs

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCreateItem   func(ctx context.Context, req *ItemRequest) (*ItemResponse, error)
	OnDeleteItem   func(ctx context.Context, itemID string) error
	OnGetItems     func(ctx context.Context) ([]ItemResponse, error)
	OnCreateOrder  func(ctx context.Context, req *OrderRequest) (*OrderResponse, error)
	OnGetItemLabel func(ctx context.Context, barcode string) (*LabelResponse, error)
	OnGetTracking  func(ctx context.Context, awb string) (*TrackingResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return &APIError{StatusCode: 500, Messages: []string{"Simulated API error"}}
	}
	return nil
}

// CreateItem registers a mock item.
func (m *MockAPIClient) CreateItem(ctx context.Context, req *ItemRequest) (*ItemResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateItem != nil {
		return m.OnCreateItem(ctx, req)
	}

	return &ItemResponse{
		ID:      "item-" + uuid.New().String()[:8],
		Barcode: fmt.Sprintf("CN%012dDE", time.Now().UnixNano()%1000000000000),
	}, nil
}

// DeleteItem removes a mock item.
func (m *MockAPIClient) DeleteItem(ctx context.Context, itemID string) error {
	if err := m.simulate(); err != nil {
		return err
	}
	if m.OnDeleteItem != nil {
		return m.OnDeleteItem(ctx, itemID)
	}
	return nil
}

// GetItems lists mock items.
func (m *MockAPIClient) GetItems(ctx context.Context) ([]ItemResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetItems != nil {
		return m.OnGetItems(ctx)
	}
	return []ItemResponse{}, nil
}

// CreateOrder creates a mock order with one shipment covering all barcodes.
func (m *MockAPIClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateOrder != nil {
		return m.OnCreateOrder(ctx, req)
	}

	items := make([]ShipmentItemInfo, len(req.ItemBarcodes))
	for i, barcode := range req.ItemBarcodes {
		items[i] = ShipmentItemInfo{Barcode: barcode}
	}

	return &OrderResponse{
		OrderID:     "ord-" + uuid.New().String()[:8],
		OrderStatus: "CREATED",
		Shipments: []ShipmentInfo{
			{
				AWB:   fmt.Sprintf("%d", 100000000000+time.Now().UnixNano()%900000000000),
				Items: items,
			},
		},
	}, nil
}

// GetItemLabel returns a mock single-piece label payload.
func (m *MockAPIClient) GetItemLabel(ctx context.Context, barcode string) (*LabelResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetItemLabel != nil {
		return m.OnGetItemLabel(ctx, barcode)
	}

	content := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 mock label " + barcode))
	return &LabelResponse{
		LabelResponse: LabelEnvelope{
			BD: LabelBD{
				ResponseStatus: ResponseStatus{Code: 200, Message: "OK"},
				Labels: []LabelRecord{
					{
						ShipmentID:             "shp-" + uuid.New().String()[:8],
						DeliveryConfirmationNo: barcode,
						Content:                content,
					},
				},
			},
		},
	}, nil
}

// GetTracking returns mock tracking information.
func (m *MockAPIClient) GetTracking(ctx context.Context, awb string) (*TrackingResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetTracking != nil {
		return m.OnGetTracking(ctx, awb)
	}

	now := time.Now()
	return &TrackingResponse{
		AWB:    awb,
		Status: "IN_TRANSIT",
		Events: []TrackingEvent{
			{
				Timestamp:   now.Add(-48 * time.Hour).Format(time.RFC3339),
				Description: "Shipment picked up",
				Location:    "Leipzig",
				Status:      "PICKED_UP",
			},
			{
				Timestamp:   now.Add(-24 * time.Hour).Format(time.RFC3339),
				Description: "In transit to destination",
				Location:    "Frankfurt",
				Status:      "IN_TRANSIT",
			},
		},
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
