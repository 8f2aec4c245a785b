package pricing

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/pricing"
	"github.com/lagerhub/backend/internal/domain/stock"
	"github.com/lagerhub/backend/internal/infrastructure/cache"
	"github.com/lagerhub/backend/internal/infrastructure/persistence"
	"github.com/lagerhub/backend/internal/infrastructure/scraping"
)

type stubSource struct {
	name   string
	quotes []pricing.Quote
	err    error
	calls  int
}

func (s *stubSource) Name() string            { return s.name }
func (s *stubSource) Matches(url string) bool { return false }

func (s *stubSource) FetchDetails(context.Context, string) (*scraping.Detail, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSource) Search(context.Context, string) ([]pricing.Quote, error) {
	s.calls++
	return s.quotes, s.err
}

func newPriceService(t *testing.T, sources ...scraping.Source) (*Service, *persistence.StockRepository) {
	t.Helper()
	logger := zap.NewNop()
	repo := persistence.NewStockRepository(filepath.Join(t.TempDir(), "stock.json"), logger)
	c := cache.NewInMemoryPriceCache(time.Minute, logger)
	t.Cleanup(func() { c.Close() })
	return NewService(sources, c, repo, logger), repo
}

func TestSearchMarketPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("merges quotes from all sources cheapest first", func(t *testing.T) {
		otto := &stubSource{name: "Otto", quotes: []pricing.Quote{
			{Source: "Otto", Title: "Switch", PriceCents: 27999},
		}}
		amazon := &stubSource{name: "Amazon", quotes: []pricing.Quote{
			{Source: "Amazon", Title: "Switch", PriceCents: 26500},
			{Source: "Amazon", Title: "Switch Bundle", PriceCents: 0},
		}}
		svc, _ := newPriceService(t, otto, amazon)

		result, err := svc.SearchMarketPrices(ctx, "nintendo switch")
		require.NoError(t, err)
		require.Len(t, result.Quotes, 3)
		assert.Equal(t, int64(26500), int64(result.Quotes[0].PriceCents))
		assert.Equal(t, int64(27999), int64(result.Quotes[1].PriceCents))
		assert.Equal(t, int64(0), int64(result.Quotes[2].PriceCents))
	})

	t.Run("a failing source does not fail the search", func(t *testing.T) {
		broken := &stubSource{name: "Otto", err: errors.New("timeout")}
		working := &stubSource{name: "Amazon", quotes: []pricing.Quote{
			{Source: "Amazon", Title: "Switch", PriceCents: 26500},
		}}
		svc, _ := newPriceService(t, broken, working)

		result, err := svc.SearchMarketPrices(ctx, "nintendo switch")
		require.NoError(t, err)
		assert.Len(t, result.Quotes, 1)
	})

	t.Run("short queries return empty without hitting sources", func(t *testing.T) {
		src := &stubSource{name: "Otto"}
		svc, _ := newPriceService(t, src)

		result, err := svc.SearchMarketPrices(ctx, "ab")
		require.NoError(t, err)
		assert.Empty(t, result.Quotes)
		assert.Zero(t, src.calls)
	})

	t.Run("second search is served from cache", func(t *testing.T) {
		src := &stubSource{name: "Otto", quotes: []pricing.Quote{
			{Source: "Otto", Title: "Switch", PriceCents: 27999},
		}}
		svc, _ := newPriceService(t, src)

		_, err := svc.SearchMarketPrices(ctx, "nintendo switch")
		require.NoError(t, err)
		_, err = svc.SearchMarketPrices(ctx, "nintendo switch")
		require.NoError(t, err)
		assert.Equal(t, 1, src.calls)
	})
}

func TestCheckItemPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps the lowest market price on the item", func(t *testing.T) {
		src := &stubSource{name: "Otto", quotes: []pricing.Quote{
			{Source: "Otto", Title: "Switch", PriceCents: 27999},
			{Source: "Otto", Title: "Switch used", PriceCents: 19900},
		}}
		svc, repo := newPriceService(t, src)
		item := stock.NewStockItem("Nintendo Switch", stock.NewItemFields{})
		_, err := repo.Add(item)
		require.NoError(t, err)

		result, err := svc.CheckItemPrice(ctx, item.ID)
		require.NoError(t, err)
		assert.Len(t, result.Quotes, 2)

		stored, ok := repo.FindByID(item.ID)
		require.True(t, ok)
		assert.Equal(t, int64(19900), int64(stored.MarketPriceCents))
		assert.NotEmpty(t, stored.LastPriceCheck)
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		svc, _ := newPriceService(t, &stubSource{name: "Otto"})
		_, err := svc.CheckItemPrice(ctx, "STOCK-missing")
		assert.Error(t, err)
	})
}
