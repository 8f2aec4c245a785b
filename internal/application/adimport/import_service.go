package adimport

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/listing"
	"github.com/lagerhub/backend/internal/domain/shared"
	"github.com/lagerhub/backend/internal/domain/shared/valueobject"
	"github.com/lagerhub/backend/internal/domain/stock"
	"github.com/lagerhub/backend/internal/infrastructure/scraping"
)

// negotiablePrice is rendered when no purchase price is known, so the
// ask price becomes "price on request".
const negotiablePrice = "VB"

// Service builds ad drafts from stock items. When the item carries a
// source URL and a matching scraper exists, description and images come
// from the product page; otherwise the item's own data is used. The ask
// price is the purchase price times a configured markup factor.
type Service struct {
	drafts      listing.DraftRepository
	stocks      stock.Repository
	sources     []scraping.Source
	priceFactor decimal.Decimal
	logger      *zap.Logger
}

// NewService creates an import service. A factor of 0 falls back to 2.2.
func NewService(drafts listing.DraftRepository, stocks stock.Repository, sources []scraping.Source, priceFactor float64, logger *zap.Logger) *Service {
	if priceFactor <= 0 {
		priceFactor = 2.2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		drafts:      drafts,
		stocks:      stocks,
		sources:     sources,
		priceFactor: decimal.NewFromFloat(priceFactor),
		logger:      logger,
	}
}

// GetAll returns the pending import drafts
func (s *Service) GetAll(_ context.Context) []listing.ImportDraft {
	return s.drafts.GetAll()
}

// CreateImportFromStock builds and persists a draft for the given stock
// item. Scrape failures degrade to the fallback description, they never
// block the import.
func (s *Service) CreateImportFromStock(ctx context.Context, stockID string) (*listing.ImportDraft, error) {
	item, ok := s.stocks.FindByID(stockID)
	if !ok {
		return nil, shared.ErrNotFound
	}

	s.logger.Info("creating ad import",
		zap.String("stock_id", stockID),
		zap.String("title", item.Title))

	description := "Automatisch erstellt aus Lagerbestand."
	var images []string
	if item.Image != "" {
		images = []string{item.Image}
	}
	sourceName := "Lagerbestand"

	if item.SourceURL != "" {
		if source := s.sourceFor(item.SourceURL); source != nil {
			detail, err := source.FetchDetails(ctx, item.SourceURL)
			if err != nil {
				s.logger.Error("detail scrape failed, using stock data",
					zap.String("source", source.Name()),
					zap.String("url", item.SourceURL),
					zap.Error(err))
			} else {
				if detail.Description != "" {
					description = detail.Description
				}
				if len(detail.Images) > 0 {
					images = detail.Images
				}
				sourceName += " (" + source.Name() + ")"
			}
		}
	}

	askPrice := negotiablePrice
	if item.PurchasePriceCents > 0 {
		askCents := item.PurchasePriceCents.Multiply(s.priceFactor)
		askPrice = valueobject.CentsToString(askCents)
	}

	now := time.Now()
	draft := listing.ImportDraft{
		ID:            listing.NewImportDraftID(now),
		Title:         item.Title,
		Description:   description,
		Price:         askPrice,
		PurchasePrice: valueobject.CentsToString(item.PurchasePriceCents),
		Images:        images,
		Source:        sourceName,
		URL:           item.SourceURL,
		StockID:       item.ID,
		CreatedAt:     now,
	}
	if draft.Title == "" {
		draft.Title = "Unbekanntes Produkt"
	}

	if _, err := s.drafts.Add(draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// DeleteDraft removes a pending draft
func (s *Service) DeleteDraft(_ context.Context, id string) (bool, error) {
	return s.drafts.Delete(id)
}

// sourceFor finds the scraper responsible for a product URL
func (s *Service) sourceFor(url string) scraping.Source {
	for _, source := range s.sources {
		if source.Matches(url) {
			return source
		}
	}
	return nil
}
