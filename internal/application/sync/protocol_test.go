package sync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	listingapp "github.com/lagerhub/backend/internal/application/listing"
	stockapp "github.com/lagerhub/backend/internal/application/stock"
	"github.com/lagerhub/backend/internal/domain/listing"
	"github.com/lagerhub/backend/internal/domain/shared"
	"github.com/lagerhub/backend/internal/domain/stock"
	"github.com/lagerhub/backend/internal/infrastructure/event"
	"github.com/lagerhub/backend/internal/infrastructure/persistence"
)

// fixture wires stock service, listing service, bus and protocol the way
// the process does, on top of temp-dir JSON files.
type fixture struct {
	stocks   *stockapp.Service
	listings *listingapp.Service
	ads      *persistence.ListingRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()

	stockRepo := persistence.NewStockRepository(filepath.Join(dir, "stock.json"), logger)
	adRepo := persistence.NewListingRepository(filepath.Join(dir, "listings.json"), logger)

	listings := listingapp.NewService(adRepo, logger)
	stocks := stockapp.NewService(stockRepo, 0, logger)

	bus := event.NewInMemoryEventBus(logger)
	stocks.SetEventPublisher(bus)
	NewProtocol(listings, logger).Register(bus)

	return &fixture{stocks: stocks, listings: listings, ads: adRepo}
}

func (f *fixture) seedAd(t *testing.T, id string) {
	t.Helper()
	ad := listing.Ad{
		BaseEntity: shared.NewBaseEntity(id),
		Title:      "Nintendo Switch Konsole",
		Status:     listing.StatusActive,
		InStock:    true,
	}
	_, err := f.ads.Add(ad)
	require.NoError(t, err)
}

func (f *fixture) adInStock(t *testing.T, id string) bool {
	t.Helper()
	for _, ad := range f.ads.GetAll() {
		if ad.ID == id {
			return ad.InStock
		}
	}
	t.Fatalf("ad %s not found", id)
	return false
}

func (f *fixture) createItem(t *testing.T, title string, qty int) stock.StockItem {
	t.Helper()
	collection, err := f.stocks.CreateNewItem(context.Background(), title, stock.NewItemFields{Quantity: qty})
	require.NoError(t, err)
	return collection[len(collection)-1]
}

func TestSynchronizationProtocol(t *testing.T) {
	ctx := context.Background()

	t.Run("manual link marks the ad in stock regardless of quantity", func(t *testing.T) {
		f := newFixture(t)
		f.seedAd(t, "AD-1")
		_, err := f.ads.Update("AD-1", func(ad *listing.Ad) error {
			ad.InStock = false
			return nil
		})
		require.NoError(t, err)

		item := f.createItem(t, "Nintendo Switch", 0)
		_, err = f.stocks.LinkToAd(ctx, item.ID, "AD-1", "")
		require.NoError(t, err)

		assert.True(t, f.adInStock(t, "AD-1"))
	})

	t.Run("depleting a linked item removes the ad from stock", func(t *testing.T) {
		f := newFixture(t)
		f.seedAd(t, "AD-1")
		item := f.createItem(t, "Nintendo Switch", 3)
		_, err := f.stocks.LinkToAd(ctx, item.ID, "AD-1", "")
		require.NoError(t, err)

		_, err = f.stocks.UpdateQuantity(ctx, item.ID, -999)
		require.NoError(t, err)

		updated, ok := f.itemByID(item.ID)
		require.True(t, ok)
		assert.Equal(t, 0, updated.Quantity)
		assert.False(t, f.adInStock(t, "AD-1"))
	})

	t.Run("replenishing from zero marks the ad in stock again", func(t *testing.T) {
		f := newFixture(t)
		f.seedAd(t, "AD-1")
		item := f.createItem(t, "Nintendo Switch", 1)
		_, err := f.stocks.LinkToAd(ctx, item.ID, "AD-1", "")
		require.NoError(t, err)

		_, err = f.stocks.UpdateQuantity(ctx, item.ID, -1)
		require.NoError(t, err)
		require.False(t, f.adInStock(t, "AD-1"))

		_, err = f.stocks.IncrementQuantity(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, f.adInStock(t, "AD-1"))
	})

	t.Run("scan match on a depleted linked item re-stocks the ad", func(t *testing.T) {
		f := newFixture(t)
		f.seedAd(t, "AD-1")
		item := f.createItem(t, "Nintendo Switch", 0)
		_, err := f.stocks.LinkToAd(ctx, item.ID, "AD-1", "")
		require.NoError(t, err)
		_, err = f.ads.Update("AD-1", func(ad *listing.Ad) error {
			ad.InStock = false
			return nil
		})
		require.NoError(t, err)

		result, err := f.stocks.CheckScanMatch(ctx, "nintendo switch")
		require.NoError(t, err)
		require.True(t, result.Found)
		assert.Equal(t, 1, result.Item.Quantity)
		assert.True(t, f.adInStock(t, "AD-1"))
	})

	t.Run("unlink removes the ad from stock", func(t *testing.T) {
		f := newFixture(t)
		f.seedAd(t, "AD-1")
		item := f.createItem(t, "Nintendo Switch", 2)
		_, err := f.stocks.LinkToAd(ctx, item.ID, "AD-1", "")
		require.NoError(t, err)

		_, err = f.stocks.UnlinkFromAd(ctx, item.ID)
		require.NoError(t, err)

		assert.False(t, f.adInStock(t, "AD-1"))
		updated, ok := f.itemByID(item.ID)
		require.True(t, ok)
		assert.False(t, updated.IsLinked())
	})

	t.Run("deleting a linked item cascades onto the ad", func(t *testing.T) {
		f := newFixture(t)
		f.seedAd(t, "AD-1")
		item := f.createItem(t, "Nintendo Switch", 2)
		_, err := f.stocks.LinkToAd(ctx, item.ID, "AD-1", "")
		require.NoError(t, err)

		collection, err := f.stocks.DeleteItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Empty(t, collection)
		assert.False(t, f.adInStock(t, "AD-1"))
	})

	t.Run("quantity change within positive range leaves the ad alone", func(t *testing.T) {
		f := newFixture(t)
		f.seedAd(t, "AD-1")
		item := f.createItem(t, "Nintendo Switch", 5)
		_, err := f.stocks.LinkToAd(ctx, item.ID, "AD-1", "")
		require.NoError(t, err)

		_, err = f.stocks.UpdateQuantity(ctx, item.ID, -2)
		require.NoError(t, err)
		assert.True(t, f.adInStock(t, "AD-1"))
	})

	t.Run("unlinked items never touch the ads", func(t *testing.T) {
		f := newFixture(t)
		f.seedAd(t, "AD-1")
		_, err := f.ads.Update("AD-1", func(ad *listing.Ad) error {
			ad.InStock = false
			return nil
		})
		require.NoError(t, err)

		item := f.createItem(t, "Nintendo Switch", 3)
		_, err = f.stocks.UpdateQuantity(ctx, item.ID, -3)
		require.NoError(t, err)
		assert.False(t, f.adInStock(t, "AD-1"))
	})

	t.Run("side effect on a missing ad is tolerated", func(t *testing.T) {
		f := newFixture(t)
		item := f.createItem(t, "Nintendo Switch", 1)
		_, err := f.stocks.LinkToAd(ctx, item.ID, "AD-GONE", "")
		require.NoError(t, err)

		_, err = f.stocks.UpdateQuantity(ctx, item.ID, -1)
		assert.NoError(t, err)
	})
}

func (f *fixture) itemByID(id string) (*stock.StockItem, bool) {
	for _, item := range f.stocks.GetAll(context.Background()) {
		if item.ID == id {
			return &item, true
		}
	}
	return nil, false
}
