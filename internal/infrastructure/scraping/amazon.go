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

// AmazonSource scrapes amazon.de search results and product pages
type AmazonSource struct {
	browser *Browser
	logger  *zap.Logger
}

// NewAmazonSource creates a new amazon.de scraping source
func NewAmazonSource(browser *Browser, logger *zap.Logger) *AmazonSource {
	return &AmazonSource{browser: browser, logger: logger}
}

func (s *AmazonSource) Name() string { return "Amazon" }

func (s *AmazonSource) Matches(rawURL string) bool {
	return strings.Contains(rawURL, "amazon.")
}

const amazonSearchScript = `(() => {
	const data = [];
	document.querySelectorAll('div[data-component-type="s-search-result"]').forEach(item => {
		const titleEl = item.querySelector('h2 span');
		const linkEl = item.querySelector('div[data-cy="title-recipe"] a') || item.querySelector('h2 a');
		const imgEl = item.querySelector('img.s-image');

		let price = '0';
		const whole = item.querySelector('.a-price-whole');
		const fraction = item.querySelector('.a-price-fraction');
		if (whole) {
			const wholeClean = whole.innerText.replace(/\./g, '').trim();
			const fractionClean = fraction ? fraction.innerText.trim() : '00';
			price = wholeClean + ',' + fractionClean;
		} else {
			const offscreen = item.querySelector('.a-price .a-offscreen');
			if (offscreen) price = offscreen.innerText.replace('€', '').replace(/\./g, '').trim();
		}

		if (titleEl && linkEl) {
			let link = linkEl.href;
			if (!link.startsWith('http')) link = 'https://www.amazon.de' + link;
			data.push({
				title: titleEl.innerText.trim(),
				rawPrice: price,
				img: imgEl ? imgEl.src : '',
				url: link,
			});
		}
	});
	return data;
})()`

// Search queries the amazon.de search page and extracts result tiles
func (s *AmazonSource) Search(ctx context.Context, query string) ([]pricing.Quote, error) {
	searchURL := "https://www.amazon.de/s?k=" + url.QueryEscape(query)

	var hits []rawHit
	err := s.browser.Run(ctx,
		chromedp.Navigate(searchURL),
		acceptCookies("#sp-cc-accept"),
		chromedp.Evaluate(amazonSearchScript, &hits),
	)
	if err != nil {
		return nil, fmt.Errorf("amazon search failed: %w", err)
	}

	quotes := quotesFromHits(hits, s.Name(), s.browser.MaxResults())

	s.logger.Info("amazon search done",
		zap.String("query", query),
		zap.Int("hits", len(quotes)))
	return quotes, nil
}

const amazonDetailScript = `(() => {
	const title = document.querySelector('#productTitle')?.innerText.trim() || '';

	let rawPrice = '';
	const whole = document.querySelector('.a-price-whole');
	const fraction = document.querySelector('.a-price-fraction');
	if (whole) {
		const wholeClean = whole.innerText.replace(/\./g, '').trim();
		const fractionClean = fraction ? fraction.innerText.trim() : '00';
		rawPrice = wholeClean + ',' + fractionClean;
	} else {
		const pEl = document.querySelector('.a-price .a-offscreen');
		if (pEl) rawPrice = pEl.innerText.replace('€', '').replace(/\./g, '').trim();
	}

	const description = Array.from(document.querySelectorAll('#feature-bullets li span'))
		.map(el => el.innerText.trim()).join('\n');

	const images = [];
	const imgContainer = document.querySelector('#imgTagWrapperId img');
	if (imgContainer) {
		const dyn = imgContainer.getAttribute('data-a-dynamic-image');
		if (dyn) {
			try {
				Object.keys(JSON.parse(dyn)).forEach(u => images.push(u));
			} catch (e) {
				images.push(imgContainer.src);
			}
		} else {
			images.push(imgContainer.src);
		}
	}

	const techData = [];
	document.querySelectorAll('#productDetails_techSpec_section_1 tr').forEach(r => {
		const k = r.querySelector('th')?.innerText.trim();
		const v = r.querySelector('td')?.innerText.trim();
		if (k && v) techData.push(k + ': ' + v);
	});

	return { title, rawPrice, description, techData, images: images.slice(0, 10), url: document.location.href };
})()`

// FetchDetails scrapes one amazon.de product page
func (s *AmazonSource) FetchDetails(ctx context.Context, pageURL string) (*Detail, error) {
	var detail Detail
	err := s.browser.Run(ctx,
		chromedp.Navigate(pageURL),
		acceptCookies("#sp-cc-accept"),
		chromedp.Evaluate(amazonDetailScript, &detail),
	)
	if err != nil {
		return nil, fmt.Errorf("amazon detail scrape failed: %w", err)
	}
	if detail.Title == "" {
		return nil, fmt.Errorf("amazon detail scrape: no product data at %s", pageURL)
	}
	detail.URL = pageURL
	return &detail, nil
}

var _ Source = (*AmazonSource)(nil)
