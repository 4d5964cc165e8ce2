package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storeship/dhlbridge/internal/store"
)

func sourceOrderKey(sourceOrderID string) string {
	return "source_order:" + sourceOrderID
}

// SourceOrderLink is the shipment linkage recorded against a source order.
type SourceOrderLink struct {
	AWBs          []string `json:"awbs,omitempty"`
	RemoteOrderID string   `json:"dhl_order_id,omitempty"`
	Notes         []string `json:"notes,omitempty"`
}

// StoreLinker is a SourceOrderLinker that keeps linkage records in the
// key-value store, one record per source order.
type StoreLinker struct {
	store store.Store
}

// NewStoreLinker creates a store-backed source order linker.
func NewStoreLinker(s store.Store) *StoreLinker {
	return &StoreLinker{store: s}
}

// Link returns the linkage record for a source order, empty when none exists.
func (l *StoreLinker) Link(ctx context.Context, sourceOrderID string) (*SourceOrderLink, error) {
	data, err := l.store.Get(ctx, sourceOrderKey(sourceOrderID))
	if errors.Is(err, store.ErrNotFound) {
		return &SourceOrderLink{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading link for source order %s: %w", sourceOrderID, err)
	}

	var link SourceOrderLink
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("decoding link for source order %s: %w", sourceOrderID, err)
	}
	return &link, nil
}

func (l *StoreLinker) update(ctx context.Context, sourceOrderID string, apply func(*SourceOrderLink)) error {
	link, err := l.Link(ctx, sourceOrderID)
	if err != nil {
		return err
	}

	apply(link)

	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("encoding link for source order %s: %w", sourceOrderID, err)
	}
	if err := l.store.Put(ctx, sourceOrderKey(sourceOrderID), data); err != nil {
		return fmt.Errorf("saving link for source order %s: %w", sourceOrderID, err)
	}
	return nil
}

// RecordAWB appends a shipment AWB to the source order's linkage record.
func (l *StoreLinker) RecordAWB(ctx context.Context, sourceOrderID, awb string) error {
	return l.update(ctx, sourceOrderID, func(link *SourceOrderLink) {
		for _, existing := range link.AWBs {
			if existing == awb {
				return
			}
		}
		link.AWBs = append(link.AWBs, awb)
	})
}

// RecordRemoteOrder stores the remote order id on the linkage record.
func (l *StoreLinker) RecordRemoteOrder(ctx context.Context, sourceOrderID, remoteOrderID string) error {
	return l.update(ctx, sourceOrderID, func(link *SourceOrderLink) {
		link.RemoteOrderID = remoteOrderID
	})
}

// AddNote appends a human-readable note to the linkage record.
func (l *StoreLinker) AddNote(ctx context.Context, sourceOrderID, note string) error {
	return l.update(ctx, sourceOrderID, func(link *SourceOrderLink) {
		link.Notes = append(link.Notes, note)
	})
}

var _ SourceOrderLinker = (*StoreLinker)(nil)
