package pricing

import (
	"context"
	"time"

	"github.com/lagerhub/backend/internal/domain/shared/valueobject"
)

// Quote is a single market price observation for a search query
type Quote struct {
	Source     string            `json:"source"`
	Title      string            `json:"title"`
	PriceCents valueobject.Cents `json:"priceCents"`
	URL        string            `json:"url"`
	Image      string            `json:"image,omitempty"`
}

// Result groups the quotes returned for one query
type Result struct {
	Query     string    `json:"query"`
	Quotes    []Quote   `json:"quotes"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// LowestCents returns the cheapest quote price, or 0 when empty
func (r Result) LowestCents() valueobject.Cents {
	var lowest valueobject.Cents
	for _, q := range r.Quotes {
		if q.PriceCents <= 0 {
			continue
		}
		if lowest == 0 || q.PriceCents < lowest {
			lowest = q.PriceCents
		}
	}
	return lowest
}

// Cache stores price search results keyed by query. Lookups that miss
// return ok=false with a nil error.
type Cache interface {
	Get(ctx context.Context, query string) (*Result, bool, error)
	Set(ctx context.Context, query string, result *Result, ttl time.Duration) error
	Delete(ctx context.Context, query string) error
	Close() error
}
