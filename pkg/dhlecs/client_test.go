package dhlecs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/storeship/dhlbridge/pkg/dhlecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *dhlecs.MockAPIClient) *dhlecs.Client {
	logger := otelzap.New(zap.NewNop())
	return dhlecs.NewWithAPIClient(
		dhlecs.Config{ContactName: "Helga Schmidt", AWBCopyCount: 2},
		mockClient,
		logger,
	)
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(dhlecs.NewMockAPIClient())
	assert.Equal(t, "dhlecs", client.Name())
}

func TestClient_CreateItem_Success(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()
	client := newTestClient(mockAPI)

	ctx := context.Background()
	item, err := client.CreateItem(ctx, &dhlecs.ItemInfo{
		Product:  "GMP",
		LabelRef: "order-55",
		Value:    19.99,
		Currency: "EUR",
		Weight:   0.5,
		Recipient: dhlecs.Recipient{
			Name:         "Jane Doe",
			AddressLine1: "1 Example Way",
			City:         "Berlin",
			PostalCode:   "10115",
			Country:      "DE",
		},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.NotEmpty(t, item.Barcode)
}

func TestClient_CreateItem_WireConversion(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()

	var captured *dhlecs.ItemRequest
	mockAPI.OnCreateItem = func(ctx context.Context, req *dhlecs.ItemRequest) (*dhlecs.ItemResponse, error) {
		captured = req
		return &dhlecs.ItemResponse{ID: "item-1", Barcode: "CN000000000001DE"}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.CreateItem(ctx, &dhlecs.ItemInfo{
		Product:    "GPP",
		LabelRef:   "ref-1",
		Value:      42.50,
		Currency:   "EUR",
		Weight:     1.2,
		NatureType: "SALE_GOODS",
		Recipient: dhlecs.Recipient{
			Name:         "John Smith",
			AddressLine1: "99 High St",
			City:         "London",
			PostalCode:   "SW1A 1AA",
			Country:      "GB",
		},
		Contents: []dhlecs.Content{
			{Qty: 3, Description: "T-Shirt", Weight: 0.3, Value: 12.00, Origin: "DE", HSCode: "610910"},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "PRIORITY", captured.ServiceLevel)
	assert.Equal(t, "GPP", captured.Product)
	assert.Equal(t, "ref-1", captured.CustRef)
	assert.Equal(t, 42.50, captured.ShipmentAmount)
	assert.Equal(t, "SALE_GOODS", captured.ShipmentNaturetype)
	assert.Equal(t, "John Smith", captured.Recipient)
	assert.Equal(t, "GB", captured.DestinationCountry)

	require.Len(t, captured.Contents, 1)
	assert.Equal(t, 3, captured.Contents[0].Amount)
	assert.Equal(t, "T-Shirt", captured.Contents[0].Description)
	assert.Equal(t, "610910", captured.Contents[0].HSCode)
}

func TestClient_CreateOrder_SendsPaperwork(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()

	var captured *dhlecs.OrderRequest
	mockAPI.OnCreateOrder = func(ctx context.Context, req *dhlecs.OrderRequest) (*dhlecs.OrderResponse, error) {
		captured = req
		return &dhlecs.OrderResponse{
			OrderID:     "ord-1",
			OrderStatus: "CREATED",
			Shipments: []dhlecs.ShipmentInfo{
				{
					AWB: "123456789012",
					Items: []dhlecs.ShipmentItemInfo{
						{Barcode: "CN1"},
						{Barcode: "CN2"},
					},
				},
			},
		}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	created, err := client.CreateOrder(ctx, []string{"CN1", "CN2"})

	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, []string{"CN1", "CN2"}, captured.ItemBarcodes)
	assert.Equal(t, 2, captured.Paperwork.AWBCopyCount)
	assert.Equal(t, "Helga Schmidt", captured.Paperwork.ContactName)

	assert.Equal(t, "ord-1", created.ID)
	assert.Equal(t, "CREATED", created.Status)
	require.Len(t, created.Shipments, 1)
	assert.Equal(t, "123456789012", created.Shipments[0].AWB)
	assert.Equal(t, []string{"CN1", "CN2"}, created.Shipments[0].Barcodes)
}

func TestClient_CreateOrder_DefaultAWBCopyCount(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()

	var captured *dhlecs.OrderRequest
	mockAPI.OnCreateOrder = func(ctx context.Context, req *dhlecs.OrderRequest) (*dhlecs.OrderResponse, error) {
		captured = req
		return &dhlecs.OrderResponse{OrderID: "ord-2"}, nil
	}

	logger := otelzap.New(zap.NewNop())
	client := dhlecs.NewWithAPIClient(dhlecs.Config{}, mockAPI, logger)

	_, err := client.CreateOrder(context.Background(), []string{"CN1"})
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, 1, captured.Paperwork.AWBCopyCount)
}

func TestClient_CreateOrder_APIError(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()
	mockAPI.OnCreateOrder = func(ctx context.Context, req *dhlecs.OrderRequest) (*dhlecs.OrderResponse, error) {
		return nil, &dhlecs.APIError{StatusCode: 422, Messages: []string{"bad address"}}
	}

	client := newTestClient(mockAPI)

	_, err := client.CreateOrder(context.Background(), []string{"CN1"})
	require.Error(t, err)

	var apiErr *dhlecs.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 422, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "bad address")
}

func TestClient_GetItemLabel_Normalizes(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()
	client := newTestClient(mockAPI)

	records, err := client.GetItemLabel(context.Background(), "CN42")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "CN42", records[0].Barcode)
	assert.Equal(t, "CN42", records[0].TrackingNumber)
	assert.Contains(t, string(records[0].Content), "%PDF")
}

func TestClient_GetItemLabel_RejectedStatus(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()
	mockAPI.OnGetItemLabel = func(ctx context.Context, barcode string) (*dhlecs.LabelResponse, error) {
		return &dhlecs.LabelResponse{
			LabelResponse: dhlecs.LabelEnvelope{
				BD: dhlecs.LabelBD{
					ResponseStatus: dhlecs.ResponseStatus{Code: 404, Message: "Not found"},
				},
			},
		}, nil
	}

	client := newTestClient(mockAPI)

	_, err := client.GetItemLabel(context.Background(), "CN-missing")
	require.Error(t, err)

	var apiErr *dhlecs.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestClient_DeleteItem_SimulatedError(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()
	mockAPI.SimulateErrors = true

	client := newTestClient(mockAPI)

	err := client.DeleteItem(context.Background(), "item-1")
	assert.Error(t, err)
}

func TestClient_GetTracking_Success(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()
	client := newTestClient(mockAPI)

	tracking, err := client.GetTracking(context.Background(), "123456789012")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", tracking.AWB)
	assert.NotEmpty(t, tracking.Events)
}
