package fulfillment_test

import (
	"context"
	"os"
	"testing"

	"github.com/storeship/dhlbridge/internal/batch"
	"github.com/storeship/dhlbridge/internal/fulfillment"
	"github.com/storeship/dhlbridge/internal/labels"
	"github.com/storeship/dhlbridge/internal/store"
	"github.com/storeship/dhlbridge/pkg/dhlecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type stubMerger struct{}

func (stubMerger) AddPDF(path, pages string) error { return nil }

func (stubMerger) Merge(outPath string) error {
	return os.WriteFile(outPath, []byte("%PDF merged"), 0o644)
}

type workflowFixture struct {
	workflow   *fulfillment.Workflow
	aggregator *batch.Aggregator
	storage    *labels.Storage
	linker     *fulfillment.StoreLinker
}

func newWorkflowFixture(t *testing.T, mockAPI *dhlecs.MockAPIClient, factory labels.MergerFactory) *workflowFixture {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	kv := store.NewMemoryStore()

	client := dhlecs.NewWithAPIClient(dhlecs.Config{ContactName: "Warehouse"}, mockAPI, logger)
	repo := batch.NewRepository(kv)
	storage := labels.NewStorage(t.TempDir(), "http://localhost:8080/labels")

	f := &workflowFixture{
		aggregator: batch.NewAggregator(repo, client, logger),
		storage:    storage,
		linker:     fulfillment.NewStoreLinker(kv),
	}

	waybill := labels.NewWaybill(repo, storage, client, factory, logger)
	f.workflow = fulfillment.NewWorkflow(f.aggregator, waybill, f.linker, logger)
	return f
}

// twoShipmentOrder answers every order submission with a fixed two-shipment
// response. CNGHOST is not part of any pending batch in these tests.
func twoShipmentOrder(ctx context.Context, req *dhlecs.OrderRequest) (*dhlecs.OrderResponse, error) {
	return &dhlecs.OrderResponse{
		OrderID:     "ord-1",
		OrderStatus: "CREATED",
		Shipments: []dhlecs.ShipmentInfo{
			{AWB: "AWB1", Items: []dhlecs.ShipmentItemInfo{{Barcode: "CNA"}, {Barcode: "CNGHOST"}}},
			{AWB: "AWB2", Items: []dhlecs.ShipmentItemInfo{{Barcode: "CNB"}}},
		},
	}, nil
}

func TestWorkflow_Finalize(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()
	mockAPI.OnCreateOrder = twoShipmentOrder

	factory := func() labels.Merger { return stubMerger{} }
	f := newWorkflowFixture(t, mockAPI, factory)
	ctx := context.Background()

	require.NoError(t, f.aggregator.AddItem(ctx, "CNA", "10"))
	require.NoError(t, f.aggregator.AddItem(ctx, "CNB", "11"))

	orderID, err := f.workflow.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ord-1", orderID)

	// Each source order carries its shipment AWB, a tracking note, and the
	// remote order id.
	link, err := f.linker.Link(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, []string{"AWB1"}, link.AWBs)
	assert.Contains(t, link.Notes, "Shipment AWB: AWB1")
	assert.Equal(t, "ord-1", link.RemoteOrderID)

	link, err = f.linker.Link(ctx, "11")
	require.NoError(t, err)
	assert.Equal(t, []string{"AWB2"}, link.AWBs)

	// The merged waybill was produced and the pending batch reset.
	assert.True(t, f.storage.Exists(labels.KindOrder, "ord-1"))
	current, err := f.aggregator.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.Items)
}

func TestWorkflow_Finalize_SubmitFailure(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()
	mockAPI.OnCreateOrder = func(ctx context.Context, req *dhlecs.OrderRequest) (*dhlecs.OrderResponse, error) {
		return nil, &dhlecs.APIError{StatusCode: 503, Messages: []string{"carrier unavailable"}}
	}

	factory := func() labels.Merger { return stubMerger{} }
	f := newWorkflowFixture(t, mockAPI, factory)
	ctx := context.Background()

	require.NoError(t, f.aggregator.AddItem(ctx, "CNA", "10"))

	orderID, err := f.workflow.Finalize(ctx)
	require.Error(t, err)
	assert.Empty(t, orderID)

	// The batch is untouched and no linkage was recorded.
	current, err := f.aggregator.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"CNA": "10"}, current.Items)

	link, err := f.linker.Link(ctx, "10")
	require.NoError(t, err)
	assert.Empty(t, link.AWBs)
}

func TestWorkflow_Finalize_MergeFailureKeepsOrder(t *testing.T) {
	mockAPI := dhlecs.NewMockAPIClient()
	mockAPI.OnCreateOrder = twoShipmentOrder

	// No merge backend: the order finalizes but the waybill step fails.
	f := newWorkflowFixture(t, mockAPI, nil)
	ctx := context.Background()

	require.NoError(t, f.aggregator.AddItem(ctx, "CNA", "10"))
	require.NoError(t, f.aggregator.AddItem(ctx, "CNB", "11"))

	orderID, err := f.workflow.Finalize(ctx)
	require.Error(t, err)
	assert.Equal(t, "ord-1", orderID)
	assert.ErrorIs(t, err, labels.ErrMergeUnavailable)

	// The AWB links recorded before the failure are kept.
	link, err := f.linker.Link(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, []string{"AWB1"}, link.AWBs)
}
