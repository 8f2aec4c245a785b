package stock

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lagerhub/backend/internal/domain/shared"
	"github.com/lagerhub/backend/internal/domain/shared/valueobject"
)

// LinkState is the derived state of a stock item with respect to its
// optional linked ad.
type LinkState string

const (
	// Unlinked means the item has no associated ad.
	Unlinked LinkState = "UNLINKED"
	// LinkedAndStocked means the item is linked and has quantity > 0.
	LinkedAndStocked LinkState = "LINKED_STOCKED"
	// LinkedAndDepleted means the item is linked and has quantity == 0.
	LinkedAndDepleted LinkState = "LINKED_DEPLETED"
)

// StockItem represents one physical product in the warehouse.
// It is the aggregate root for all stock operations. Prices are held as
// minor-unit integers; the quantity is never negative.
type StockItem struct {
	shared.BaseEntity
	Title              string            `json:"title"`
	SKU                string            `json:"sku"`
	Quantity           int               `json:"quantity"`
	Location           string            `json:"location,omitempty"`
	PurchasePriceCents valueobject.Cents `json:"purchasePriceCents"`
	MarketPriceCents   valueobject.Cents `json:"marketPriceCents"`
	SourceURL          string            `json:"sourceUrl,omitempty"`
	SourceName         string            `json:"sourceName,omitempty"`
	LinkedAdID         *string           `json:"linkedAdId"`
	Image              string            `json:"image,omitempty"`
	LastPriceCheck     string            `json:"lastPriceCheck,omitempty"`
}

// RecordID implements the persistence record contract.
func (i StockItem) RecordID() string {
	return i.ID
}

// lastIDMilli guards against two generated ids within one millisecond.
var lastIDMilli atomic.Int64

// uniqueMilli returns a strictly increasing millisecond value per process.
func uniqueMilli(now time.Time) int64 {
	ms := now.UnixMilli()
	for {
		prev := lastIDMilli.Load()
		if ms <= prev {
			ms = prev + 1
		}
		if lastIDMilli.CompareAndSwap(prev, ms) {
			return ms
		}
	}
}

// NewStockItemID generates a stock record identifier.
func NewStockItemID(now time.Time) string {
	return fmt.Sprintf("STOCK-%d", uniqueMilli(now))
}

// NewSKU generates a human-readable SKU. Timestamp-based rather than
// random so repeated generation within one session cannot collide with
// codes printed on existing labels.
func NewSKU(now time.Time) string {
	return "LAGER-" + strings.ToUpper(formatBase36(uniqueMilli(now)))
}

func formatBase36(v int64) string {
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	if v == 0 {
		return "0"
	}
	var buf [16]byte
	pos := len(buf)
	for v > 0 {
		pos--
		buf[pos] = digits[v%36]
		v /= 36
	}
	return string(buf[pos:])
}

// NewStockItem creates a stock item with normalized prices and a
// non-negative quantity. Missing id and SKU are generated.
func NewStockItem(title string, fields NewItemFields) StockItem {
	now := time.Now()

	id := fields.ID
	if id == "" {
		id = NewStockItemID(now)
	}
	sku := fields.SKU
	if sku == "" {
		sku = NewSKU(now)
	}
	quantity := fields.Quantity
	if quantity < 0 {
		quantity = 0
	}

	return StockItem{
		BaseEntity:         shared.NewBaseEntity(id),
		Title:              title,
		SKU:                sku,
		Quantity:           quantity,
		Location:           fields.Location,
		PurchasePriceCents: valueobject.ToCents(fields.PurchasePrice),
		MarketPriceCents:   valueobject.ToCents(fields.MarketPrice),
		SourceURL:          fields.SourceURL,
		SourceName:         fields.SourceName,
		Image:              fields.Image,
		LastPriceCheck:     fields.LastPriceCheck,
	}
}

// NewItemFields carries the optional creation attributes. Price fields are
// raw text in either separator convention; they get normalized on the way in.
type NewItemFields struct {
	ID             string
	SKU            string
	Quantity       int
	Location       string
	PurchasePrice  string
	MarketPrice    string
	SourceURL      string
	SourceName     string
	Image          string
	LastPriceCheck string
}

// IsLinked returns true when the item references an ad.
func (i *StockItem) IsLinked() bool {
	return i.LinkedAdID != nil && *i.LinkedAdID != ""
}

// State derives the link state from linkage and quantity.
func (i *StockItem) State() LinkState {
	if !i.IsLinked() {
		return Unlinked
	}
	if i.Quantity > 0 {
		return LinkedAndStocked
	}
	return LinkedAndDepleted
}

// AdjustQuantity adds delta to the quantity, clamping at zero. Returns the
// resulting quantity.
func (i *StockItem) AdjustQuantity(delta int) int {
	next := i.Quantity + delta
	if next < 0 {
		next = 0
	}
	i.Quantity = next
	i.UpdatedAt = time.Now()
	return next
}

// Link associates the item with an ad and optionally replaces the image.
// Idempotent: re-linking to the same ad is a no-op apart from the image.
func (i *StockItem) Link(adID, adImage string) {
	i.LinkedAdID = &adID
	if adImage != "" {
		i.Image = adImage
	}
	i.UpdatedAt = time.Now()
}

// Unlink clears the ad reference.
func (i *StockItem) Unlink() {
	i.LinkedAdID = nil
	i.UpdatedAt = time.Now()
}

// Clone returns a deep copy. Mutators of the collection store receive a
// clone so a failed mutation cannot leak partial writes into live state.
func (i StockItem) Clone() StockItem {
	out := i
	if i.LinkedAdID != nil {
		v := *i.LinkedAdID
		out.LinkedAdID = &v
	}
	return out
}
