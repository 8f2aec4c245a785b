package stock

import (
	"encoding/json"
	"testing"

	"github.com/lagerhub/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestItemPatchApply(t *testing.T) {
	base := NewStockItem("PS5 Controller", NewItemFields{
		SKU:           "LAGER-1",
		Quantity:      3,
		Location:      "Regal A",
		PurchasePrice: "20,00",
	})
	base.Link("AD-1", "")

	t.Run("absent fields stay unchanged", func(t *testing.T) {
		out := ItemPatch{Title: strPtr("PS5 Controller weiß")}.Apply(base)
		assert.Equal(t, "PS5 Controller weiß", out.Title)
		assert.Equal(t, "LAGER-1", out.SKU)
		assert.Equal(t, 3, out.Quantity)
		assert.Equal(t, "AD-1", *out.LinkedAdID)
	})

	t.Run("prices are re-normalized", func(t *testing.T) {
		out := ItemPatch{MarketPrice: strPtr("1.299,00")}.Apply(base)
		assert.Equal(t, valueobject.Cents(129900), out.MarketPriceCents)
	})

	t.Run("explicit null clears linked ad", func(t *testing.T) {
		out := ItemPatch{LinkedAdID: Optional[string]{Set: true}}.Apply(base)
		assert.Nil(t, out.LinkedAdID)
	})

	t.Run("negative quantity clamps", func(t *testing.T) {
		out := ItemPatch{Quantity: intPtr(-7)}.Apply(base)
		assert.Equal(t, 0, out.Quantity)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		_ = ItemPatch{Title: strPtr("other")}.Apply(base)
		assert.Equal(t, "PS5 Controller", base.Title)
	})
}

func TestItemPatchJSON(t *testing.T) {
	t.Run("missing key leaves field unset", func(t *testing.T) {
		var p ItemPatch
		require.NoError(t, json.Unmarshal([]byte(`{"title":"X"}`), &p))
		assert.False(t, p.LinkedAdID.Set)
		assert.False(t, p.Image.Set)
		require.NotNil(t, p.Title)
		assert.Equal(t, "X", *p.Title)
	})

	t.Run("explicit null is set but not valid", func(t *testing.T) {
		var p ItemPatch
		require.NoError(t, json.Unmarshal([]byte(`{"linkedAdId":null}`), &p))
		assert.True(t, p.LinkedAdID.Set)
		assert.False(t, p.LinkedAdID.Valid)
	})

	t.Run("value is set and valid", func(t *testing.T) {
		var p ItemPatch
		require.NoError(t, json.Unmarshal([]byte(`{"linkedAdId":"AD-5"}`), &p))
		assert.True(t, p.LinkedAdID.Set)
		assert.True(t, p.LinkedAdID.Valid)
		assert.Equal(t, "AD-5", p.LinkedAdID.Value)
	})
}

func TestItemPatchIsEmpty(t *testing.T) {
	assert.True(t, ItemPatch{}.IsEmpty())
	assert.False(t, ItemPatch{Title: strPtr("x")}.IsEmpty())
	assert.False(t, ItemPatch{LinkedAdID: Optional[string]{Set: true}}.IsEmpty())
}
