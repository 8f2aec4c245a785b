package scraping

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/infrastructure/config"
)

const defaultScrapeTimeout = 30 * time.Second

// Browser owns the Chrome allocator shared by all scraping sources.
// Each scrape runs in its own tab created from the allocator context.
type Browser struct {
	cfg         config.ScraperConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewBrowser creates the allocator. With a RemoteURL configured it
// attaches to an already running Chrome instance, otherwise it launches
// a headless one.
func NewBrowser(cfg config.ScraperConfig, logger *zap.Logger) *Browser {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultScrapeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Browser{cfg: cfg, logger: logger}

	if cfg.RemoteURL != "" {
		b.allocCtx, b.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return b
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("no-sandbox", cfg.NoSandbox),
		chromedp.UserAgent(cfg.UserAgent),
	)
	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return b
}

// Run opens a fresh tab, applies the timeout and executes the actions
func (b *Browser) Run(ctx context.Context, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(b.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			b.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()

	// Honor both the scrape timeout and the caller's context
	go func() {
		select {
		case <-ctx.Done():
			tabCancel()
		case <-tabCtx.Done():
		}
	}()

	all := append([]chromedp.Action{setViewport(1280, 900)}, actions...)
	return chromedp.Run(tabCtx, all...)
}

// MaxResults returns the configured per-source result cap
func (b *Browser) MaxResults() int {
	if b.cfg.MaxResults <= 0 {
		return 3
	}
	return b.cfg.MaxResults
}

// Close releases the allocator
func (b *Browser) Close() error {
	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

// setViewport emulates a desktop window size
func setViewport(width, height int64) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetDeviceMetricsOverride(width, height, 1.0, false).Do(ctx)
	})
}

// acceptCookies clicks a consent button if present, best effort
func acceptCookies(selector string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		clickCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_ = chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible).Do(clickCtx)
		return nil
	})
}
