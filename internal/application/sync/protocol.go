package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	listingapp "github.com/lagerhub/backend/internal/application/listing"
	"github.com/lagerhub/backend/internal/domain/shared"
	"github.com/lagerhub/backend/internal/domain/stock"
)

// Protocol keeps the availability of linked ads aligned with stock
// quantities. It is an event handler on the synchronous bus, so every
// side effect lands before the triggering mutation returns to its
// caller. The rules form a fixed transition table:
//
//	manual link                 -> mark ad in stock (regardless of quantity)
//	quantity crosses to 0       -> remove ad from stock
//	quantity rises from 0 to >0 -> mark ad in stock
//	manual unlink               -> remove ad from stock
//	delete of a linked item     -> remove ad from stock
//
// A failing side effect is logged and surfaced, never rolled back: the
// stock mutation that triggered it stays applied.
type Protocol struct {
	listings *listingapp.Service
	logger   *zap.Logger
}

// NewProtocol creates the synchronization handler
func NewProtocol(listings *listingapp.Service, logger *zap.Logger) *Protocol {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Protocol{listings: listings, logger: logger}
}

// Register subscribes the protocol on the bus
func (p *Protocol) Register(bus shared.EventSubscriber) {
	bus.Subscribe(p)
}

// EventTypes lists the stock lifecycle events the protocol consumes
func (p *Protocol) EventTypes() []string {
	return []string{
		stock.EventTypeItemLinked,
		stock.EventTypeItemUnlinked,
		stock.EventTypeItemDeleted,
		stock.EventTypeQuantityChanged,
	}
}

// Handle dispatches one event through the transition table
func (p *Protocol) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *stock.ItemLinkedEvent:
		// A fresh link always exposes the ad, even at quantity zero,
		// matching the manual-link rule.
		return p.markInStock(ctx, e.AdID, "link")

	case *stock.ItemUnlinkedEvent:
		return p.removeFromStock(ctx, e.AdID, "unlink")

	case *stock.ItemDeletedEvent:
		if e.LinkedAdID == "" {
			return nil
		}
		return p.removeFromStock(ctx, e.LinkedAdID, "delete")

	case *stock.QuantityChangedEvent:
		if e.LinkedAdID == "" {
			return nil
		}
		switch {
		case e.NewQuantity == 0 && e.OldQuantity > 0:
			return p.removeFromStock(ctx, e.LinkedAdID, "depleted")
		case e.NewQuantity > 0 && e.OldQuantity == 0:
			return p.markInStock(ctx, e.LinkedAdID, "replenished")
		}
		return nil

	default:
		return nil
	}
}

func (p *Protocol) markInStock(ctx context.Context, adID, cause string) error {
	if _, err := p.listings.MarkAsInStock(ctx, adID); err != nil {
		p.logger.Error("sync: mark in stock failed",
			zap.String("ad_id", adID),
			zap.String("cause", cause),
			zap.Error(err))
		return fmt.Errorf("%w: mark in stock %s: %v", shared.ErrSyncSideEffect, adID, err)
	}
	p.logger.Debug("sync: ad in stock",
		zap.String("ad_id", adID),
		zap.String("cause", cause))
	return nil
}

func (p *Protocol) removeFromStock(ctx context.Context, adID, cause string) error {
	if _, err := p.listings.RemoveFromStock(ctx, adID); err != nil {
		p.logger.Error("sync: remove from stock failed",
			zap.String("ad_id", adID),
			zap.String("cause", cause),
			zap.Error(err))
		return fmt.Errorf("%w: remove from stock %s: %v", shared.ErrSyncSideEffect, adID, err)
	}
	p.logger.Debug("sync: ad out of stock",
		zap.String("ad_id", adID),
		zap.String("cause", cause))
	return nil
}

var _ shared.EventHandler = (*Protocol)(nil)
