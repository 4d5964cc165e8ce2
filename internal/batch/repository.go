package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storeship/dhlbridge/internal/store"
)

const currentOrderKey = "dhl:order:current"

func finalizedOrderKey(orderID string) string {
	return "dhl:order:" + orderID
}

// Repository persists pending and finalized orders in a key-value store.
// Writes are whole-record replacements.
type Repository struct {
	store store.Store
}

// NewRepository creates a repository over the given store.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// Current returns the pending batch. A missing record yields the default
// empty batch, never an error.
func (r *Repository) Current(ctx context.Context) (*PendingOrder, error) {
	data, err := r.store.Get(ctx, currentOrderKey)
	if errors.Is(err, store.ErrNotFound) {
		return NewPendingOrder(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading current order: %w", err)
	}

	var order PendingOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("decoding current order: %w", err)
	}
	if order.Items == nil {
		order.Items = make(map[string]string)
	}
	return &order, nil
}

// SaveCurrent replaces the pending batch record.
func (r *Repository) SaveCurrent(ctx context.Context, order *PendingOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding current order: %w", err)
	}
	if err := r.store.Put(ctx, currentOrderKey, data); err != nil {
		return fmt.Errorf("saving current order: %w", err)
	}
	return nil
}

// Finalized returns a finalized order by its remote order id.
func (r *Repository) Finalized(ctx context.Context, orderID string) (*FinalizedOrder, error) {
	data, err := r.store.Get(ctx, finalizedOrderKey(orderID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading order %s: %w", orderID, err)
	}

	var order FinalizedOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("decoding order %s: %w", orderID, err)
	}
	return &order, nil
}

// SaveFinalized stores a finalized order under its remote order id.
// Finalized orders are created once and never mutated afterwards.
func (r *Repository) SaveFinalized(ctx context.Context, order *FinalizedOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding order %s: %w", order.ID, err)
	}
	if err := r.store.Put(ctx, finalizedOrderKey(order.ID), data); err != nil {
		return fmt.Errorf("saving order %s: %w", order.ID, err)
	}
	return nil
}
