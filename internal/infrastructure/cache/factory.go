package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/pricing"
	"github.com/lagerhub/backend/internal/infrastructure/config"
)

// NewPriceCache builds a pricing.Cache from configuration
func NewPriceCache(cfg config.CacheConfig, logger *zap.Logger) (pricing.Cache, error) {
	switch cfg.Backend {
	case "inmemory", "":
		return NewInMemoryPriceCache(cfg.TTL, logger), nil
	case "redis":
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		c, err := NewRedisPriceCache(addr, cfg.Redis.Password, cfg.Redis.DB, cfg.TTL)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis price cache", zap.String("addr", addr))
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
