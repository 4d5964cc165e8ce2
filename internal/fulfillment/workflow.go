// Package fulfillment orchestrates batch submission into finalized,
// labeled carrier orders.
package fulfillment

import (
	"context"
	"fmt"

	"github.com/storeship/dhlbridge/internal/batch"
	"github.com/storeship/dhlbridge/internal/labels"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Submitter submits the pending batch to the carrier.
type Submitter interface {
	Submit(ctx context.Context) (*batch.FinalizedOrder, error)
}

// WaybillBuilder produces the merged order-level waybill.
type WaybillBuilder interface {
	MergeOrderLabels(ctx context.Context, orderID string) (labels.FileInfo, error)
}

// SourceOrderLinker records shipment results against originating source
// orders. The storefront sits behind this port.
type SourceOrderLinker interface {
	RecordAWB(ctx context.Context, sourceOrderID, awb string) error
	RecordRemoteOrder(ctx context.Context, sourceOrderID, remoteOrderID string) error
	AddNote(ctx context.Context, sourceOrderID, note string) error
}

// Workflow runs the order finalization path: submit the batch, link every
// shipment back to its source orders, and build the merged waybill.
type Workflow struct {
	batches  Submitter
	waybills WaybillBuilder
	linker   SourceOrderLinker
	logger   *otelzap.Logger
}

// NewWorkflow creates a finalization workflow.
func NewWorkflow(batches Submitter, waybills WaybillBuilder, linker SourceOrderLinker, logger *otelzap.Logger) *Workflow {
	return &Workflow{
		batches:  batches,
		waybills: waybills,
		linker:   linker,
		logger:   logger,
	}
}

// Finalize submits the pending batch and returns the remote order id.
//
// Submission failure leaves the batch intact and returns an empty id.
// Once the order is finalized, later failures (source-order linking, label
// merge) are surfaced alongside the non-empty order id: the order stays
// finalized and the already-recorded AWB links are kept.
func (w *Workflow) Finalize(ctx context.Context) (string, error) {
	order, err := w.batches.Submit(ctx)
	if err != nil {
		return "", err
	}

	if err := w.linkSourceOrders(ctx, order); err != nil {
		return order.ID, err
	}

	if _, err := w.waybills.MergeOrderLabels(ctx, order.ID); err != nil {
		return order.ID, fmt.Errorf("order %s finalized, waybill merge failed: %w", order.ID, err)
	}

	return order.ID, nil
}

// linkSourceOrders records the AWB, a tracking note, and the remote order
// id against every source order that contributed an item to the batch.
// Items the batch does not know are skipped; this should not happen, but
// a stale carrier response must not abort the linking of the rest.
func (w *Workflow) linkSourceOrders(ctx context.Context, order *batch.FinalizedOrder) error {
	for _, shipment := range order.Shipments {
		for _, item := range shipment.Items {
			sourceOrderID, ok := order.Items[item.Barcode]
			if !ok {
				w.logger.Warn("Shipment references unknown item barcode",
					zap.String("order_id", order.ID),
					zap.String("awb", shipment.AWB),
					zap.String("barcode", item.Barcode),
				)
				continue
			}

			if err := w.linker.RecordAWB(ctx, sourceOrderID, shipment.AWB); err != nil {
				return fmt.Errorf("recording AWB for source order %s: %w", sourceOrderID, err)
			}
			if err := w.linker.AddNote(ctx, sourceOrderID, "Shipment AWB: "+shipment.AWB); err != nil {
				return fmt.Errorf("adding note to source order %s: %w", sourceOrderID, err)
			}
			if err := w.linker.RecordRemoteOrder(ctx, sourceOrderID, order.ID); err != nil {
				return fmt.Errorf("recording remote order for source order %s: %w", sourceOrderID, err)
			}
		}
	}
	return nil
}
