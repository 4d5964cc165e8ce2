// Package dhlecs provides integration with the DHL eCommerce shipping API.
package dhlecs

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const carrierName = "dhlecs"

// Config holds DHL eCS client configuration.
type Config struct {
	BaseURL      string
	EKP          string // Customer account number
	APIToken     string
	ContactName  string // Paperwork contact for created orders
	AWBCopyCount int    // Number of AWB copies requested per order
	UseMock      bool   // When true, uses a mock API client
}

// Client is the DHL eCS shipment client.
// It translates domain values into carrier wire requests and delegates
// the transport to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
}

// New creates a new DHL eCS client.
// If cfg.UseMock is true, it uses a mock API client for testing.
// Otherwise, it uses the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			EKP:     cfg.EKP,
			Tokens:  StaticTokenSource(cfg.APIToken),
			Timeout: 30 * time.Second,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger)
}

// NewWithAPIClient creates a new DHL eCS client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger) *Client {
	if cfg.AWBCopyCount == 0 {
		cfg.AWBCopyCount = 1
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// ============================================================================
// Domain types
// ============================================================================

// ItemInfo describes one parcel to be registered with the carrier.
type ItemInfo struct {
	Product    string
	LabelRef   string
	LabelRef2  string
	Value      float64
	Currency   string
	Weight     float64
	NatureType string
	Recipient  Recipient
	Contents   []Content
}

// Recipient holds the destination address of an item.
type Recipient struct {
	Name         string
	Phone        string
	Email        string
	AddressLine1 string
	AddressLine2 string
	City         string
	PostalCode   string
	State        string
	Country      string
}

// Content is one declarable content line of an item.
type Content struct {
	Qty         int
	Description string
	ProductID   string
	Weight      float64
	Origin      string
	Value       float64
	HSCode      string
}

// Item is a carrier-registered parcel.
type Item struct {
	ID      string
	Barcode string
}

// CreatedOrder is the result of submitting a batch of items as an order.
type CreatedOrder struct {
	ID        string
	Status    string
	Shipments []CreatedShipment
}

// CreatedShipment is one physical shipment within a created order.
type CreatedShipment struct {
	AWB      string
	Barcodes []string
}

// ============================================================================
// Operations
// ============================================================================

// CreateItem registers a new item with the carrier.
func (c *Client) CreateItem(ctx context.Context, info *ItemInfo) (*Item, error) {
	c.logger.Info("Creating DHL item",
		zap.String("product", info.Product),
		zap.String("destination", info.Recipient.Country),
	)

	apiResp, err := c.apiClient.CreateItem(ctx, itemInfoToRequest(info))
	if err != nil {
		c.logger.Error("DHL API error", zap.Error(err))
		return nil, err
	}

	return &Item{ID: apiResp.ID, Barcode: apiResp.Barcode}, nil
}

// DeleteItem removes a previously registered item from the carrier.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	c.logger.Info("Deleting DHL item", zap.String("item_id", itemID))

	if err := c.apiClient.DeleteItem(ctx, itemID); err != nil {
		c.logger.Error("DHL API error", zap.Error(err))
		return err
	}
	return nil
}

// GetItems lists the items currently registered with the carrier.
func (c *Client) GetItems(ctx context.Context) ([]Item, error) {
	apiResp, err := c.apiClient.GetItems(ctx)
	if err != nil {
		c.logger.Error("DHL API error", zap.Error(err))
		return nil, err
	}

	items := make([]Item, len(apiResp))
	for i, r := range apiResp {
		items[i] = Item{ID: r.ID, Barcode: r.Barcode}
	}
	return items, nil
}

// CreateOrder submits the given item barcodes as a single shipping order.
// The paperwork carries the configured AWB copy count and contact name.
func (c *Client) CreateOrder(ctx context.Context, barcodes []string) (*CreatedOrder, error) {
	c.logger.Info("Creating DHL order",
		zap.Int("item_count", len(barcodes)),
		zap.String("contact_name", c.config.ContactName),
	)

	apiReq := &OrderRequest{
		ItemBarcodes: barcodes,
		Paperwork: Paperwork{
			AWBCopyCount: c.config.AWBCopyCount,
			ContactName:  c.config.ContactName,
		},
	}

	apiResp, err := c.apiClient.CreateOrder(ctx, apiReq)
	if err != nil {
		c.logger.Error("DHL API error", zap.Error(err))
		return nil, err
	}

	return orderResponseToDomain(apiResp), nil
}

// GetItemLabel retrieves and normalizes the label for an item by barcode.
func (c *Client) GetItemLabel(ctx context.Context, barcode string) ([]PieceRecord, error) {
	c.logger.Info("Getting DHL label", zap.String("barcode", barcode))

	apiResp, err := c.apiClient.GetItemLabel(ctx, barcode)
	if err != nil {
		c.logger.Error("DHL API error", zap.Error(err))
		return nil, err
	}

	records, err := NormalizeLabel(apiResp)
	if err != nil {
		c.logger.Error("DHL label response rejected", zap.Error(err))
		return nil, err
	}
	return records, nil
}

// GetTracking retrieves tracking information for a shipment AWB.
func (c *Client) GetTracking(ctx context.Context, awb string) (*TrackingResponse, error) {
	c.logger.Info("Getting DHL tracking info", zap.String("awb", awb))

	apiResp, err := c.apiClient.GetTracking(ctx, awb)
	if err != nil {
		c.logger.Error("DHL API error", zap.Error(err))
		return nil, err
	}
	return apiResp, nil
}

// ============================================================================
// Conversion helpers: domain models <-> API models
// ============================================================================

func itemInfoToRequest(info *ItemInfo) *ItemRequest {
	contents := make([]ContentPiece, len(info.Contents))
	for i, content := range info.Contents {
		contents[i] = ContentPiece{
			Amount:      content.Qty,
			Description: content.Description,
			IndexNumber: content.ProductID,
			NetWeight:   content.Weight,
			Origin:      content.Origin,
			Value:       content.Value,
			HSCode:      content.HSCode,
		}
	}

	return &ItemRequest{
		ServiceLevel:        "PRIORITY",
		Product:             info.Product,
		CustRef:             info.LabelRef,
		CustRef2:            info.LabelRef2,
		ShipmentAmount:      info.Value,
		ShipmentCurrency:    info.Currency,
		ShipmentGrossWeight: info.Weight,
		ShipmentNaturetype:  info.NatureType,
		Recipient:           info.Recipient.Name,
		RecipientPhone:      info.Recipient.Phone,
		RecipientEmail:      info.Recipient.Email,
		AddressLine1:        info.Recipient.AddressLine1,
		AddressLine2:        info.Recipient.AddressLine2,
		City:                info.Recipient.City,
		PostalCode:          info.Recipient.PostalCode,
		State:               info.Recipient.State,
		DestinationCountry:  info.Recipient.Country,
		Contents:            contents,
	}
}

func orderResponseToDomain(resp *OrderResponse) *CreatedOrder {
	shipments := make([]CreatedShipment, len(resp.Shipments))
	for i, s := range resp.Shipments {
		barcodes := make([]string, len(s.Items))
		for j, item := range s.Items {
			barcodes[j] = item.Barcode
		}
		shipments[i] = CreatedShipment{AWB: s.AWB, Barcodes: barcodes}
	}

	return &CreatedOrder{
		ID:        resp.OrderID,
		Status:    resp.OrderStatus,
		Shipments: shipments,
	}
}
