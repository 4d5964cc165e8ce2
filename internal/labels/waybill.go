package labels

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/storeship/dhlbridge/internal/batch"
	"github.com/storeship/dhlbridge/pkg/dhlecs"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OrderSource looks up finalized orders.
type OrderSource interface {
	Finalized(ctx context.Context, orderID string) (*batch.FinalizedOrder, error)
}

// LabelFetcher retrieves normalized label pieces from the carrier.
type LabelFetcher interface {
	GetItemLabel(ctx context.Context, barcode string) ([]dhlecs.PieceRecord, error)
}

// Waybill builds the merged order-level waybill document from the
// single-shipment label files of a finalized order.
type Waybill struct {
	orders    OrderSource
	storage   *Storage
	fetcher   LabelFetcher
	newMerger MergerFactory // nil when the merge capability is absent
	logger    *otelzap.Logger
}

// NewWaybill creates a waybill builder. Pass a nil factory when no merge
// backend is available; merges then fail fast with ErrMergeUnavailable.
func NewWaybill(orders OrderSource, storage *Storage, fetcher LabelFetcher, newMerger MergerFactory, logger *otelzap.Logger) *Waybill {
	return &Waybill{
		orders:    orders,
		storage:   storage,
		fetcher:   fetcher,
		newMerger: newMerger,
		logger:    logger,
	}
}

// Find returns the location of an order's merged waybill without building
// it. It fails with ErrWaybillNotFound when no merged file exists.
func (w *Waybill) Find(orderID string) (FileInfo, error) {
	info, err := w.storage.PathFor(KindOrder, orderID)
	if err != nil {
		return FileInfo{}, err
	}
	if !w.storage.Exists(KindOrder, orderID) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrWaybillNotFound, orderID)
	}
	return info, nil
}

// MergeOrderLabels produces the merged waybill for a finalized order and
// returns its location.
//
// The operation is idempotent: an already-merged file is returned as-is
// with zero merge work. Shipments whose label file is missing and cannot
// be fetched are skipped; the merge is explicitly allowed to be partial.
// An order with no mergeable label file at all fails with ErrNothingToMerge.
func (w *Waybill) MergeOrderLabels(ctx context.Context, orderID string) (FileInfo, error) {
	info, err := w.storage.PathFor(KindOrder, orderID)
	if err != nil {
		return FileInfo{}, err
	}

	if w.storage.Exists(KindOrder, orderID) {
		return info, nil
	}

	order, err := w.orders.Finalized(ctx, orderID)
	if err != nil {
		return FileInfo{}, err
	}

	if w.newMerger == nil {
		return FileInfo{}, ErrMergeUnavailable
	}
	merger := w.newMerger()

	w.ensureShipmentLabels(ctx, order)

	merged := 0
	for _, shipment := range order.Shipments {
		labelInfo, err := w.storage.PathFor(KindItem, shipment.AWB)
		if err != nil {
			return FileInfo{}, err
		}

		if !w.storage.Exists(KindItem, shipment.AWB) {
			w.logger.Warn("Skipping shipment with missing label file",
				zap.String("order_id", orderID),
				zap.String("awb", shipment.AWB),
			)
			continue
		}

		ext := strings.TrimPrefix(filepath.Ext(labelInfo.Path), ".")
		if !strings.EqualFold(ext, "pdf") {
			return FileInfo{}, ErrFormatMismatch
		}

		if err := merger.AddPDF(labelInfo.Path, "all"); err != nil {
			return FileInfo{}, err
		}
		merged++
	}

	if merged == 0 {
		return FileInfo{}, ErrNothingToMerge
	}

	if err := merger.Merge(info.Path); err != nil {
		return FileInfo{}, err
	}

	w.logger.Info("Merged order waybill",
		zap.String("order_id", orderID),
		zap.Int("label_count", merged),
	)

	return info, nil
}

// ensureShipmentLabels fetches and saves label files for shipments that do
// not have one on disk yet. Fetch failures are logged and the shipment is
// left without a file; the caller skips it.
func (w *Waybill) ensureShipmentLabels(ctx context.Context, order *batch.FinalizedOrder) {
	g, ctx := errgroup.WithContext(ctx)

	for _, shipment := range order.Shipments {
		if w.storage.Exists(KindItem, shipment.AWB) {
			continue
		}

		awb := shipment.AWB
		g.Go(func() error {
			records, err := w.fetcher.GetItemLabel(ctx, awb)
			if err != nil {
				w.logger.Warn("Could not fetch shipment label",
					zap.String("awb", awb),
					zap.Error(err),
				)
				return nil // partial merges are allowed
			}

			for _, record := range records {
				if _, err := w.storage.Save(KindItem, record.Barcode, record.Content); err != nil {
					w.logger.Warn("Could not save shipment label",
						zap.String("barcode", record.Barcode),
						zap.Error(err),
					)
				}
			}

			// The merge queue is keyed by AWB; multi-piece responses may
			// only carry piece-level barcodes.
			if len(records) > 0 && !w.storage.Exists(KindItem, awb) {
				if _, err := w.storage.Save(KindItem, awb, records[0].Content); err != nil {
					w.logger.Warn("Could not save shipment label",
						zap.String("awb", awb),
						zap.Error(err),
					)
				}
			}
			return nil
		})
	}

	g.Wait()
}
