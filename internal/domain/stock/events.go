package stock

import (
	"github.com/lagerhub/backend/internal/domain/shared"
)

// Event types emitted by the stock aggregate. The synchronization
// protocol consumes the quantity/link lifecycle; the broadcast layer
// consumes all of them.
const (
	EventTypeItemCreated     = "stock.item.created"
	EventTypeItemUpdated     = "stock.item.updated"
	EventTypeItemDeleted     = "stock.item.deleted"
	EventTypeItemLinked      = "stock.item.linked"
	EventTypeItemUnlinked    = "stock.item.unlinked"
	EventTypeQuantityChanged = "stock.quantity.changed"
)

// AggregateTypeStockItem identifies the aggregate in event metadata.
const AggregateTypeStockItem = "StockItem"

// ItemCreatedEvent is emitted when a stock item is created.
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	Title    string `json:"title"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// NewItemCreatedEvent creates an ItemCreatedEvent.
func NewItemCreatedEvent(item *StockItem) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeStockItem, item.ID),
		Title:           item.Title,
		SKU:             item.SKU,
		Quantity:        item.Quantity,
	}
}

// ItemUpdatedEvent is emitted when item details change.
type ItemUpdatedEvent struct {
	shared.BaseDomainEvent
}

// NewItemUpdatedEvent creates an ItemUpdatedEvent.
func NewItemUpdatedEvent(item *StockItem) *ItemUpdatedEvent {
	return &ItemUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemUpdated, AggregateTypeStockItem, item.ID),
	}
}

// ItemDeletedEvent is emitted when a stock item is removed. LinkedAdID
// carries the reference that must be cascaded.
type ItemDeletedEvent struct {
	shared.BaseDomainEvent
	LinkedAdID string `json:"linkedAdId,omitempty"`
}

// NewItemDeletedEvent creates an ItemDeletedEvent.
func NewItemDeletedEvent(item *StockItem) *ItemDeletedEvent {
	ev := &ItemDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemDeleted, AggregateTypeStockItem, item.ID),
	}
	if item.IsLinked() {
		ev.LinkedAdID = *item.LinkedAdID
	}
	return ev
}

// ItemLinkedEvent is emitted when an item is manually linked to an ad.
type ItemLinkedEvent struct {
	shared.BaseDomainEvent
	AdID     string `json:"adId"`
	Quantity int    `json:"quantity"`
}

// NewItemLinkedEvent creates an ItemLinkedEvent.
func NewItemLinkedEvent(item *StockItem, adID string) *ItemLinkedEvent {
	return &ItemLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemLinked, AggregateTypeStockItem, item.ID),
		AdID:            adID,
		Quantity:        item.Quantity,
	}
}

// ItemUnlinkedEvent is emitted when the ad reference is cleared.
type ItemUnlinkedEvent struct {
	shared.BaseDomainEvent
	AdID string `json:"adId"`
}

// NewItemUnlinkedEvent creates an ItemUnlinkedEvent.
func NewItemUnlinkedEvent(itemID, adID string) *ItemUnlinkedEvent {
	return &ItemUnlinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemUnlinked, AggregateTypeStockItem, itemID),
		AdID:            adID,
	}
}

// QuantityChangedEvent is emitted on every quantity mutation, including
// scan-triggered increments. OldQuantity/NewQuantity let consumers detect
// the depleted and replenished crossings.
type QuantityChangedEvent struct {
	shared.BaseDomainEvent
	OldQuantity int    `json:"oldQuantity"`
	NewQuantity int    `json:"newQuantity"`
	LinkedAdID  string `json:"linkedAdId,omitempty"`
}

// NewQuantityChangedEvent creates a QuantityChangedEvent.
func NewQuantityChangedEvent(item *StockItem, oldQuantity int) *QuantityChangedEvent {
	ev := &QuantityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuantityChanged, AggregateTypeStockItem, item.ID),
		OldQuantity:     oldQuantity,
		NewQuantity:     item.Quantity,
	}
	if item.IsLinked() {
		ev.LinkedAdID = *item.LinkedAdID
	}
	return ev
}
