package scraping

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/pricing"
)

// OttoSource scrapes otto.de search results and product pages
type OttoSource struct {
	browser *Browser
	logger  *zap.Logger
}

// NewOttoSource creates a new otto.de scraping source
func NewOttoSource(browser *Browser, logger *zap.Logger) *OttoSource {
	return &OttoSource{browser: browser, logger: logger}
}

func (s *OttoSource) Name() string { return "Otto" }

func (s *OttoSource) Matches(rawURL string) bool {
	return strings.Contains(rawURL, "otto.de")
}

const ottoSearchScript = `(() => {
	const data = [];
	document.querySelectorAll('article.product').forEach((item) => {
		const titleEl = item.querySelector('.find_tile__name');
		const priceEl = item.querySelector('.find_tile__priceValue');
		const imgEl = item.querySelector('img.find_tile__productImage');
		const linkEl = item.querySelector('a.find_tile__productLink');
		if (titleEl && linkEl) {
			let imgSrc = '';
			if (imgEl) {
				imgSrc = imgEl.src || imgEl.dataset.src || '';
				if (!imgSrc && imgEl.srcset) imgSrc = imgEl.srcset.split(',')[0].split(' ')[0];
			}
			data.push({
				title: titleEl.innerText.trim(),
				rawPrice: priceEl ? priceEl.innerText.trim() : '0',
				img: imgSrc,
				url: linkEl.href,
			});
		}
	});
	return data;
})()`

// Search queries the otto.de search page and extracts product tiles
func (s *OttoSource) Search(ctx context.Context, query string) ([]pricing.Quote, error) {
	searchURL := "https://www.otto.de/suche/" + url.PathEscape(query)

	var hits []rawHit
	err := s.browser.Run(ctx,
		chromedp.Navigate(searchURL),
		acceptCookies("#onetrust-accept-btn-handler"),
		scrollDown(),
		chromedp.Evaluate(ottoSearchScript, &hits),
	)
	if err != nil {
		return nil, fmt.Errorf("otto search failed: %w", err)
	}

	quotes := quotesFromHits(hits, s.Name(), s.browser.MaxResults())

	s.logger.Info("otto search done",
		zap.String("query", query),
		zap.Int("hits", len(quotes)))
	return quotes, nil
}

const ottoDetailScript = `(() => {
	const getText = (sel) => document.querySelector(sel)?.innerText.trim() || '';

	const title = getText('h1');
	const rawPrice = getText('.p_price__regular')
		|| getText('.js_pdp_price__retail-price__value_')
		|| getText('[data-qa="price"]');

	const descBuffer = [];
	const listItems = document.querySelectorAll('.js_pdp_selling-points li');
	if (listItems.length > 0) {
		descBuffer.push(Array.from(listItems).map(li => '• ' + li.innerText.trim()).join('\n'));
	}
	const descContainer = document.querySelector('.js_pdp_description');
	if (descContainer) {
		const paragraphs = Array.from(descContainer.querySelectorAll('p'))
			.map(p => p.innerText.trim()).filter(t => t.length > 0).join('\n\n');
		if (paragraphs) descBuffer.push(paragraphs);
	}

	const techData = [];
	document.querySelectorAll('table.dv_characteristicsTable tr').forEach(row => {
		const cells = row.querySelectorAll('td');
		if (cells.length === 2) techData.push(cells[0].innerText.trim() + ': ' + cells[1].innerText.trim());
	});

	const images = [];
	const seen = new Set();
	document.querySelectorAll('[data-image-id]').forEach(slide => {
		const id = slide.getAttribute('data-image-id');
		if (id && id.length > 5 && !seen.has(id)) {
			seen.add(id);
			images.push('https://i.otto.de/i/otto/' + id);
		}
	});
	if (images.length === 0) {
		document.querySelectorAll('.pdp_main-image__image').forEach(img => {
			if (img.src) images.push(img.src.split('?')[0]);
		});
	}

	return { title, rawPrice, description: descBuffer.join('\n\n'), techData, images, url: document.location.href };
})()`

// FetchDetails scrapes one otto.de product page
func (s *OttoSource) FetchDetails(ctx context.Context, pageURL string) (*Detail, error) {
	var detail Detail
	err := s.browser.Run(ctx,
		chromedp.Navigate(pageURL),
		acceptCookies("#onetrust-accept-btn-handler"),
		chromedp.Evaluate(ottoDetailScript, &detail),
	)
	if err != nil {
		return nil, fmt.Errorf("otto detail scrape failed: %w", err)
	}
	if detail.Title == "" {
		return nil, fmt.Errorf("otto detail scrape: no product data at %s", pageURL)
	}
	detail.URL = pageURL
	return &detail, nil
}

// scrollDown triggers lazy loading of search result tiles
func scrollDown() chromedp.Action {
	return chromedp.Evaluate(`window.scrollTo(0, Math.min(document.body.scrollHeight, 3000))`, nil)
}

var _ Source = (*OttoSource)(nil)
