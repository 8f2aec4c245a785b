package stock

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/stock"
	"github.com/lagerhub/backend/internal/infrastructure/persistence"
)

func newService(t *testing.T) *Service {
	t.Helper()
	repo := persistence.NewStockRepository(filepath.Join(t.TempDir(), "stock.json"), zap.NewNop())
	return NewService(repo, 0, zap.NewNop())
}

func create(t *testing.T, svc *Service, title string, fields stock.NewItemFields) stock.StockItem {
	t.Helper()
	collection, err := svc.CreateNewItem(context.Background(), title, fields)
	require.NoError(t, err)
	return collection[len(collection)-1]
}

func TestCreateNewItem(t *testing.T) {
	ctx := context.Background()

	t.Run("generates id and sku and normalizes prices", func(t *testing.T) {
		svc := newService(t)
		item := create(t, svc, "Nintendo Switch", stock.NewItemFields{PurchasePrice: "1.299,00"})

		assert.Contains(t, item.ID, "STOCK-")
		assert.Contains(t, item.SKU, "LAGER-")
		assert.Equal(t, int64(129900), int64(item.PurchasePriceCents))
		assert.Equal(t, 0, item.Quantity)
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		svc := newService(t)
		_, err := svc.CreateNewItem(ctx, "   ", stock.NewItemFields{})
		assert.Error(t, err)
	})
}

func TestFindInStock(t *testing.T) {
	ctx := context.Background()

	t.Run("exact sku match wins case-insensitively", func(t *testing.T) {
		svc := newService(t)
		item := create(t, svc, "Nintendo Switch", stock.NewItemFields{SKU: "LAGER-ABC123"})
		create(t, svc, "Nintendo Switch OLED", stock.NewItemFields{})

		found, score := svc.FindInStock(ctx, "lager-abc123")
		require.NotNil(t, found)
		assert.Equal(t, item.ID, found.ID)
		assert.Equal(t, 1.0, score)
	})

	t.Run("close title matches above the threshold", func(t *testing.T) {
		svc := newService(t)
		item := create(t, svc, "Nintendo Switch", stock.NewItemFields{})

		found, score := svc.FindInStock(ctx, "nintendo swich")
		require.NotNil(t, found)
		assert.Equal(t, item.ID, found.ID)
		assert.Greater(t, score, stock.DefaultMatchThreshold)
	})

	t.Run("disjoint text matches nothing", func(t *testing.T) {
		svc := newService(t)
		create(t, svc, "Nintendo Switch", stock.NewItemFields{})

		found, _ := svc.FindInStock(ctx, "Waschmaschine Bosch")
		assert.Nil(t, found)
	})

	t.Run("blank query matches nothing", func(t *testing.T) {
		svc := newService(t)
		create(t, svc, "Nintendo Switch", stock.NewItemFields{})

		found, score := svc.FindInStock(ctx, "  ")
		assert.Nil(t, found)
		assert.Zero(t, score)
	})
}

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only present fields", func(t *testing.T) {
		svc := newService(t)
		item := create(t, svc, "Nintendo Switch", stock.NewItemFields{Location: "Regal 1"})

		title := "Nintendo Switch OLED"
		collection, err := svc.UpdateDetails(ctx, item.ID, stock.ItemPatch{Title: &title})
		require.NoError(t, err)

		updated := findByID(collection, item.ID)
		require.NotNil(t, updated)
		assert.Equal(t, "Nintendo Switch OLED", updated.Title)
		assert.Equal(t, "Regal 1", updated.Location)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		svc := newService(t)
		create(t, svc, "Nintendo Switch", stock.NewItemFields{})

		title := "x"
		collection, err := svc.UpdateDetails(ctx, "STOCK-missing", stock.ItemPatch{Title: &title})
		require.NoError(t, err)
		assert.Len(t, collection, 1)
	})

	t.Run("empty patch changes nothing", func(t *testing.T) {
		svc := newService(t)
		item := create(t, svc, "Nintendo Switch", stock.NewItemFields{})

		collection, err := svc.UpdateDetails(ctx, item.ID, stock.ItemPatch{})
		require.NoError(t, err)
		assert.Equal(t, "Nintendo Switch", findByID(collection, item.ID).Title)
	})
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps at zero", func(t *testing.T) {
		svc := newService(t)
		item := create(t, svc, "Nintendo Switch", stock.NewItemFields{Quantity: 3})

		collection, err := svc.UpdateQuantity(ctx, item.ID, -999)
		require.NoError(t, err)
		assert.Equal(t, 0, findByID(collection, item.ID).Quantity)
	})

	t.Run("increment adds one", func(t *testing.T) {
		svc := newService(t)
		item := create(t, svc, "Nintendo Switch", stock.NewItemFields{Quantity: 1})

		collection, err := svc.IncrementQuantity(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, findByID(collection, item.ID).Quantity)
	})
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the item", func(t *testing.T) {
		svc := newService(t)
		item := create(t, svc, "Nintendo Switch", stock.NewItemFields{})

		collection, err := svc.DeleteItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, findByID(collection, item.ID))
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		svc := newService(t)
		create(t, svc, "Nintendo Switch", stock.NewItemFields{})

		collection, err := svc.DeleteItem(ctx, "STOCK-missing")
		require.NoError(t, err)
		assert.Len(t, collection, 1)
	})
}

func TestCheckScanMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("match increments quantity", func(t *testing.T) {
		svc := newService(t)
		item := create(t, svc, "Nintendo Switch", stock.NewItemFields{Quantity: 1})

		result, err := svc.CheckScanMatch(ctx, "Nintendo Switch")
		require.NoError(t, err)
		require.True(t, result.Found)
		assert.Equal(t, item.ID, result.Item.ID)
		assert.Equal(t, 2, result.Item.Quantity)
	})

	t.Run("no match leaves the stock alone", func(t *testing.T) {
		svc := newService(t)
		create(t, svc, "Nintendo Switch", stock.NewItemFields{Quantity: 1})

		result, err := svc.CheckScanMatch(ctx, "Kaffeemaschine")
		require.NoError(t, err)
		assert.False(t, result.Found)
		assert.Equal(t, 1, result.Collection[0].Quantity)
	})
}

func findByID(items []stock.StockItem, id string) *stock.StockItem {
	for idx := range items {
		if items[idx].ID == id {
			return &items[idx]
		}
	}
	return nil
}
