package scraping

import (
	"context"

	"github.com/lagerhub/backend/internal/domain/pricing"
	"github.com/lagerhub/backend/internal/domain/shared/valueobject"
)

// Source is one external marketplace that can be searched for prices
// and scraped for full product details.
type Source interface {
	// Name identifies the source in quotes and logs
	Name() string
	// Matches reports whether the given product URL belongs to this source
	Matches(url string) bool
	// Search returns quotes for a free-text query, already normalized
	Search(ctx context.Context, query string) ([]pricing.Quote, error)
	// FetchDetails scrapes a single product page
	FetchDetails(ctx context.Context, url string) (*Detail, error)
}

// rawHit is what the in-page extraction scripts return before price
// normalization happens on the Go side
type rawHit struct {
	Title    string `json:"title"`
	RawPrice string `json:"rawPrice"`
	Image    string `json:"img"`
	URL      string `json:"url"`
}

// quotesFromHits normalizes raw hits into quotes, capped at max
func quotesFromHits(hits []rawHit, source string, max int) []pricing.Quote {
	quotes := make([]pricing.Quote, 0, len(hits))
	for _, hit := range hits {
		if len(quotes) >= max {
			break
		}
		quotes = append(quotes, pricing.Quote{
			Source:     source,
			Title:      hit.Title,
			PriceCents: valueobject.ToCents(hit.RawPrice),
			URL:        hit.URL,
			Image:      hit.Image,
		})
	}
	return quotes
}

// Detail is the full product data scraped from one listing page
type Detail struct {
	Title       string   `json:"title"`
	RawPrice    string   `json:"rawPrice"`
	Description string   `json:"description"`
	TechData    []string `json:"techData"`
	Images      []string `json:"images"`
	EnergyLabel string   `json:"energyLabel,omitempty"`
	URL         string   `json:"url"`
}
