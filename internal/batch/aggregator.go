package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/storeship/dhlbridge/pkg/dhlecs"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ShipmentClient is the slice of the carrier client the aggregator needs.
type ShipmentClient interface {
	CreateOrder(ctx context.Context, barcodes []string) (*dhlecs.CreatedOrder, error)
}

// Aggregator owns the pending batch. It is the only component that mutates
// the current order record; all read-modify-write sequences are serialized
// behind a mutex so concurrent requests cannot lose updates.
type Aggregator struct {
	repo   *Repository
	client ShipmentClient
	logger *otelzap.Logger

	mu sync.Mutex
}

// NewAggregator creates an aggregator over the given repository and client.
func NewAggregator(repo *Repository, client ShipmentClient, logger *otelzap.Logger) *Aggregator {
	return &Aggregator{
		repo:   repo,
		client: client,
		logger: logger,
	}
}

// AddItem adds an item barcode to the pending batch, mapped to its
// originating source order. Re-adding a barcode overwrites the mapping.
func (a *Aggregator) AddItem(ctx context.Context, barcode, sourceOrderID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	order, err := a.repo.Current(ctx)
	if err != nil {
		return err
	}

	order.Items[barcode] = sourceOrderID
	return a.repo.SaveCurrent(ctx, order)
}

// RemoveItem removes an item barcode from the pending batch.
// Removing an absent barcode is a no-op.
func (a *Aggregator) RemoveItem(ctx context.Context, barcode string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	order, err := a.repo.Current(ctx)
	if err != nil {
		return err
	}

	delete(order.Items, barcode)
	return a.repo.SaveCurrent(ctx, order)
}

// Current returns a snapshot of the pending batch.
func (a *Aggregator) Current(ctx context.Context) (*PendingOrder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.repo.Current(ctx)
}

// Reset replaces the pending batch with the default empty record.
func (a *Aggregator) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reset(ctx)
}

func (a *Aggregator) reset(ctx context.Context) error {
	return a.repo.SaveCurrent(ctx, NewPendingOrder())
}

// Submit sends the pending batch to the carrier as a single order.
//
// On success the finalized order is persisted under the returned remote
// order id and the pending batch is reset, exactly once. On failure the
// carrier's error is propagated unchanged and the pending batch is left
// untouched. Submission is never retried automatically.
func (a *Aggregator) Submit(ctx context.Context) (*FinalizedOrder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	order, err := a.repo.Current(ctx)
	if err != nil {
		return nil, err
	}

	barcodes := make([]string, 0, len(order.Items))
	for barcode := range order.Items {
		barcodes = append(barcodes, barcode)
	}
	sort.Strings(barcodes)

	created, err := a.client.CreateOrder(ctx, barcodes)
	if err != nil {
		return nil, err
	}

	finalized := &FinalizedOrder{
		ID:        created.ID,
		Status:    created.Status,
		Items:     order.Items,
		Shipments: shipmentsFromCreated(created.Shipments),
	}

	if err := a.repo.SaveFinalized(ctx, finalized); err != nil {
		return nil, fmt.Errorf("persisting finalized order: %w", err)
	}

	if err := a.reset(ctx); err != nil {
		return nil, fmt.Errorf("resetting batch after submission: %w", err)
	}

	a.logger.Info("Submitted shipment batch",
		zap.String("order_id", finalized.ID),
		zap.Int("item_count", len(barcodes)),
		zap.Int("shipment_count", len(finalized.Shipments)),
	)

	return finalized, nil
}

func shipmentsFromCreated(created []dhlecs.CreatedShipment) []Shipment {
	shipments := make([]Shipment, len(created))
	for i, s := range created {
		items := make([]ShipmentItem, len(s.Barcodes))
		for j, barcode := range s.Barcodes {
			items[j] = ShipmentItem{Barcode: barcode}
		}
		shipments[i] = Shipment{AWB: s.AWB, Items: items}
	}
	return shipments
}
