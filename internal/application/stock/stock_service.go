package stock

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/shared"
	"github.com/lagerhub/backend/internal/domain/stock"
)

// Service drives all stock mutations. Every mutator returns the full
// updated collection so transports can broadcast the new state without a
// second read; callers re-find individual records by id.
type Service struct {
	repo           stock.Repository
	matchThreshold float64
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a stock service. A threshold of 0 falls back to the
// default acceptance threshold.
func NewService(repo stock.Repository, matchThreshold float64, logger *zap.Logger) *Service {
	if matchThreshold <= 0 {
		matchThreshold = stock.DefaultMatchThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:           repo,
		matchThreshold: matchThreshold,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetAll returns the current stock collection
func (s *Service) GetAll(_ context.Context) []stock.StockItem {
	return s.repo.GetAll()
}

// FindByID returns a single item, or shared.ErrNotFound
func (s *Service) FindByID(_ context.Context, id string) (*stock.StockItem, error) {
	item, ok := s.repo.FindByID(id)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

// FindInStock resolves free text to an existing item. An exact
// case-insensitive SKU match wins; otherwise the fuzzy matcher decides,
// accepting only scores above the threshold. Returns nil when nothing
// matches confidently.
func (s *Service) FindInStock(_ context.Context, name string) (*stock.StockItem, float64) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, 0
	}

	items := s.repo.GetAll()
	for idx := range items {
		if strings.EqualFold(items[idx].SKU, name) {
			return &items[idx], 1.0
		}
	}

	result := stock.FindBestMatch(name, items)
	if result.Item == nil || result.Score <= s.matchThreshold {
		return nil, result.Score
	}
	return result.Item, result.Score
}

// ScanResult is the outcome of checking scanned text against the stock
type ScanResult struct {
	Found      bool              `json:"found"`
	Item       *stock.StockItem  `json:"item,omitempty"`
	Score      float64           `json:"score"`
	Collection []stock.StockItem `json:"collection"`
}

// CheckScanMatch resolves scanned label text against the stock. A
// confident match increments the quantity by one, so scanning a package
// books it in. The quantity change goes through the regular event path
// and can flip a depleted linked ad back in stock.
func (s *Service) CheckScanMatch(ctx context.Context, scanned string) (*ScanResult, error) {
	item, score := s.FindInStock(ctx, scanned)
	if item == nil {
		s.logger.Info("scan matched nothing",
			zap.String("scanned", scanned),
			zap.Float64("score", score))
		return &ScanResult{Found: false, Score: score, Collection: s.repo.GetAll()}, nil
	}

	collection, err := s.UpdateQuantity(ctx, item.ID, +1)
	updated, _ := s.repo.FindByID(item.ID)

	s.logger.Info("scan matched stock item",
		zap.String("scanned", scanned),
		zap.String("item_id", item.ID),
		zap.Float64("score", score))
	return &ScanResult{Found: true, Item: updated, Score: score, Collection: collection}, err
}

// CreateNewItem creates a stock item. Missing id and SKU are generated,
// prices are normalized, quantity defaults to zero.
func (s *Service) CreateNewItem(ctx context.Context, title string, fields stock.NewItemFields) ([]stock.StockItem, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.ErrInvalidInput
	}

	item := stock.NewStockItem(title, fields)
	collection, err := s.repo.Add(item)
	if err != nil {
		return collection, err
	}

	syncErr := s.publish(ctx, stock.NewItemCreatedEvent(&item))
	s.logger.Info("stock item created",
		zap.String("id", item.ID),
		zap.String("sku", item.SKU))
	return collection, syncErr
}

// UpdateDetails applies a partial update. Absent patch fields leave the
// record unchanged; unknown ids are a no-op. A quantity carried in the
// patch goes through the same depleted/replenished detection as
// UpdateQuantity.
func (s *Service) UpdateDetails(ctx context.Context, id string, patch stock.ItemPatch) ([]stock.StockItem, error) {
	if patch.IsEmpty() {
		return s.repo.GetAll(), nil
	}

	var oldQuantity int
	updated, err := s.repo.Update(id, func(item *stock.StockItem) error {
		oldQuantity = item.Quantity
		*item = patch.Apply(*item)
		return nil
	})
	if err != nil {
		return s.repo.GetAll(), err
	}
	if updated == nil {
		return s.repo.GetAll(), nil
	}

	syncErr := s.publish(ctx, stock.NewItemUpdatedEvent(updated))
	if updated.Quantity != oldQuantity {
		if err := s.publish(ctx, stock.NewQuantityChangedEvent(updated, oldQuantity)); err != nil {
			syncErr = err
		}
	}
	return s.repo.GetAll(), syncErr
}

// UpdateQuantity adds delta to the quantity, clamping at zero
func (s *Service) UpdateQuantity(ctx context.Context, id string, delta int) ([]stock.StockItem, error) {
	var oldQuantity int
	updated, err := s.repo.Update(id, func(item *stock.StockItem) error {
		oldQuantity = item.Quantity
		item.AdjustQuantity(delta)
		return nil
	})
	if err != nil {
		return s.repo.GetAll(), err
	}
	if updated == nil {
		return s.repo.GetAll(), nil
	}

	var syncErr error
	if updated.Quantity != oldQuantity {
		syncErr = s.publish(ctx, stock.NewQuantityChangedEvent(updated, oldQuantity))
	}
	s.logger.Debug("quantity updated",
		zap.String("id", id),
		zap.Int("old", oldQuantity),
		zap.Int("new", updated.Quantity))
	return s.repo.GetAll(), syncErr
}

// IncrementQuantity is sugar for a delta of +1
func (s *Service) IncrementQuantity(ctx context.Context, id string) ([]stock.StockItem, error) {
	return s.UpdateQuantity(ctx, id, +1)
}

// LinkToAd associates a stock item with an ad. Idempotent; the linked ad
// is marked in stock through the synchronization protocol regardless of
// the current quantity.
func (s *Service) LinkToAd(ctx context.Context, stockID, adID, adImage string) ([]stock.StockItem, error) {
	if adID == "" {
		return nil, shared.ErrInvalidInput
	}

	updated, err := s.repo.Update(stockID, func(item *stock.StockItem) error {
		item.Link(adID, adImage)
		return nil
	})
	if err != nil {
		return s.repo.GetAll(), err
	}
	if updated == nil {
		return s.repo.GetAll(), nil
	}

	syncErr := s.publish(ctx, stock.NewItemLinkedEvent(updated, adID))
	s.logger.Info("stock item linked",
		zap.String("stock_id", stockID),
		zap.String("ad_id", adID))
	return s.repo.GetAll(), syncErr
}

// UnlinkFromAd clears the ad reference; the previously linked ad is
// taken out of stock through the synchronization protocol.
func (s *Service) UnlinkFromAd(ctx context.Context, stockID string) ([]stock.StockItem, error) {
	var previousAdID string
	updated, err := s.repo.Update(stockID, func(item *stock.StockItem) error {
		if item.IsLinked() {
			previousAdID = *item.LinkedAdID
		}
		item.Unlink()
		return nil
	})
	if err != nil {
		return s.repo.GetAll(), err
	}
	if updated == nil || previousAdID == "" {
		return s.repo.GetAll(), nil
	}

	syncErr := s.publish(ctx, stock.NewItemUnlinkedEvent(stockID, previousAdID))
	s.logger.Info("stock item unlinked",
		zap.String("stock_id", stockID),
		zap.String("ad_id", previousAdID))
	return s.repo.GetAll(), syncErr
}

// DeleteItem removes a stock item. Deleting a linked item cascades a
// removal on the linked ad through the synchronization protocol. Unknown
// ids are a no-op.
func (s *Service) DeleteItem(ctx context.Context, id string) ([]stock.StockItem, error) {
	item, ok := s.repo.FindByID(id)
	if !ok {
		return s.repo.GetAll(), nil
	}
	event := stock.NewItemDeletedEvent(item)

	removed, err := s.repo.Delete(id)
	if err != nil {
		return s.repo.GetAll(), err
	}
	var syncErr error
	if removed {
		syncErr = s.publish(ctx, event)
		s.logger.Info("stock item deleted", zap.String("id", id))
	}
	return s.repo.GetAll(), syncErr
}

// Backup snapshots the backing file
func (s *Service) Backup(_ context.Context) error {
	return s.repo.Backup()
}

// publish sends an event when a publisher is configured. A handler
// failure is logged and returned so the transport can report it, but
// the primary mutation it followed stays applied.
func (s *Service) publish(ctx context.Context, event shared.DomainEvent) error {
	if s.eventPublisher == nil {
		return nil
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("cross-store side effect failed",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID()),
			zap.Error(err))
		return err
	}
	return nil
}
