package stock

import (
	"encoding/json"
	"time"

	"github.com/lagerhub/backend/internal/domain/shared/valueobject"
)

// Optional is a tri-state field for partial updates: absent, present-null,
// or present with a value. JSON keys that are missing leave the target
// field unchanged; an explicit null clears it.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// UnmarshalJSON marks the field as set; a JSON null leaves Valid false.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON round-trips the tri-state for logging and tests.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ItemPatch is a partial update of a StockItem. Every field is optional;
// absent fields leave the record untouched. LinkedAdID and Image accept an
// explicit null to clear them.
type ItemPatch struct {
	Title         *string          `json:"title,omitempty"`
	SKU           *string          `json:"sku,omitempty"`
	Location      *string          `json:"location,omitempty"`
	Quantity      *int             `json:"quantity,omitempty"`
	PurchasePrice *string          `json:"purchasePrice,omitempty"`
	MarketPrice   *string          `json:"marketPrice,omitempty"`
	SourceURL     *string          `json:"sourceUrl,omitempty"`
	SourceName    *string          `json:"sourceName,omitempty"`
	LinkedAdID    Optional[string] `json:"linkedAdId,omitzero"`
	Image         Optional[string] `json:"image,omitzero"`
}

// IsEmpty reports whether the patch changes anything.
func (p ItemPatch) IsEmpty() bool {
	return p.Title == nil && p.SKU == nil && p.Location == nil &&
		p.Quantity == nil && p.PurchasePrice == nil && p.MarketPrice == nil &&
		p.SourceURL == nil && p.SourceName == nil &&
		!p.LinkedAdID.Set && !p.Image.Set
}

// Apply applies the patch to a copy of the item and returns it. Pure with
// respect to the receiver arguments; persistence happens elsewhere. Price
// fields are re-normalized through the cents conversion, a negative
// quantity is clamped to zero.
func (p ItemPatch) Apply(item StockItem) StockItem {
	out := item.Clone()

	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.SKU != nil {
		out.SKU = *p.SKU
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Quantity != nil {
		q := *p.Quantity
		if q < 0 {
			q = 0
		}
		out.Quantity = q
	}
	if p.PurchasePrice != nil {
		out.PurchasePriceCents = valueobject.ToCents(*p.PurchasePrice)
	}
	if p.MarketPrice != nil {
		out.MarketPriceCents = valueobject.ToCents(*p.MarketPrice)
	}
	if p.SourceURL != nil {
		out.SourceURL = *p.SourceURL
	}
	if p.SourceName != nil {
		out.SourceName = *p.SourceName
	}
	if p.LinkedAdID.Set {
		if p.LinkedAdID.Valid && p.LinkedAdID.Value != "" {
			v := p.LinkedAdID.Value
			out.LinkedAdID = &v
		} else {
			out.LinkedAdID = nil
		}
	}
	if p.Image.Set {
		if p.Image.Valid {
			out.Image = p.Image.Value
		} else {
			out.Image = ""
		}
	}

	out.UpdatedAt = time.Now()
	return out
}
