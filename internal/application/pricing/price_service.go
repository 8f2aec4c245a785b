package pricing

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/pricing"
	"github.com/lagerhub/backend/internal/domain/shared"
	"github.com/lagerhub/backend/internal/domain/stock"
	"github.com/lagerhub/backend/internal/infrastructure/scraping"
)

const minQueryLength = 3

// Service searches external marketplaces for current prices. Sources are
// queried in parallel; a failing source contributes no quotes but never
// fails the whole search. Results are cached per query.
type Service struct {
	sources []scraping.Source
	cache   pricing.Cache
	stocks  stock.Repository
	logger  *zap.Logger
}

// NewService creates a price service
func NewService(sources []scraping.Source, cache pricing.Cache, stocks stock.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sources: sources,
		cache:   cache,
		stocks:  stocks,
		logger:  logger,
	}
}

// SearchMarketPrices fans the query out to all sources. Queries shorter
// than three characters return nothing, matching how little signal they
// carry for product search.
func (s *Service) SearchMarketPrices(ctx context.Context, query string) (*pricing.Result, error) {
	if len(query) < minQueryLength {
		return &pricing.Result{Query: query, FetchedAt: time.Now()}, nil
	}

	if cached, ok, err := s.cache.Get(ctx, query); err != nil {
		s.logger.Warn("price cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	s.logger.Info("price check", zap.String("query", query))

	type sourceResult struct {
		name   string
		quotes []pricing.Quote
		err    error
	}

	results := make(chan sourceResult, len(s.sources))
	var wg sync.WaitGroup
	for _, source := range s.sources {
		wg.Add(1)
		go func(src scraping.Source) {
			defer wg.Done()
			quotes, err := src.Search(ctx, query)
			results <- sourceResult{name: src.Name(), quotes: quotes, err: err}
		}(source)
	}
	wg.Wait()
	close(results)

	result := &pricing.Result{Query: query, FetchedAt: time.Now()}
	for r := range results {
		if r.err != nil {
			s.logger.Error("price source failed",
				zap.String("source", r.name),
				zap.Error(r.err))
			continue
		}
		result.Quotes = append(result.Quotes, r.quotes...)
	}

	// Stable order: cheapest first, zero prices last
	sort.SliceStable(result.Quotes, func(i, j int) bool {
		a, b := result.Quotes[i].PriceCents, result.Quotes[j].PriceCents
		if a <= 0 {
			return false
		}
		if b <= 0 {
			return true
		}
		return a < b
	})

	if err := s.cache.Set(ctx, query, result, 0); err != nil {
		s.logger.Warn("price cache write failed", zap.Error(err))
	}
	return result, nil
}

// CheckItemPrice searches by the stock item's title and stamps the
// market price and check time onto the record.
func (s *Service) CheckItemPrice(ctx context.Context, itemID string) (*pricing.Result, error) {
	item, ok := s.stocks.FindByID(itemID)
	if !ok {
		return nil, shared.ErrNotFound
	}

	result, err := s.SearchMarketPrices(ctx, item.Title)
	if err != nil {
		return nil, err
	}

	lowest := result.LowestCents()
	if lowest > 0 {
		_, err = s.stocks.Update(itemID, func(it *stock.StockItem) error {
			it.MarketPriceCents = lowest
			it.LastPriceCheck = time.Now().Format(time.RFC3339)
			it.UpdatedAt = time.Now()
			return nil
		})
		if err != nil {
			s.logger.Error("failed to stamp market price",
				zap.String("item_id", itemID),
				zap.Error(err))
		}
	}
	return result, nil
}
