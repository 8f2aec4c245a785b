package listing

import (
	"context"

	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/listing"
)

// Service exposes the ad collection and the two availability operations
// the synchronization protocol drives.
type Service struct {
	repo   listing.Repository
	logger *zap.Logger
}

// NewService creates a listing service
func NewService(repo listing.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// GetAll returns the current ad collection
func (s *Service) GetAll(_ context.Context) []listing.Ad {
	return s.repo.GetAll()
}

// MarkAsInStock flips the ad to available. Unknown ids are a no-op,
// which keeps the protocol tolerant of ads deleted on the marketplace
// side.
func (s *Service) MarkAsInStock(_ context.Context, adID string) (*listing.Ad, error) {
	updated, err := s.repo.Update(adID, func(ad *listing.Ad) error {
		ad.MarkInStock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		s.logger.Warn("mark in stock: ad not found", zap.String("ad_id", adID))
		return nil, nil
	}

	s.logger.Info("ad marked in stock", zap.String("ad_id", adID))
	return updated, nil
}

// RemoveFromStock flips the ad to unavailable. Unknown ids are a no-op.
func (s *Service) RemoveFromStock(_ context.Context, adID string) (*listing.Ad, error) {
	updated, err := s.repo.Update(adID, func(ad *listing.Ad) error {
		ad.MarkOutOfStock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		s.logger.Warn("remove from stock: ad not found", zap.String("ad_id", adID))
		return nil, nil
	}

	s.logger.Info("ad removed from stock", zap.String("ad_id", adID))
	return updated, nil
}

// Delete removes an ad from the local collection
func (s *Service) Delete(_ context.Context, adID string) (bool, error) {
	removed, err := s.repo.Delete(adID)
	if err != nil {
		return false, err
	}
	if removed {
		s.logger.Info("ad deleted", zap.String("ad_id", adID))
	}
	return removed, nil
}

// Backup snapshots the backing file
func (s *Service) Backup(_ context.Context) error {
	return s.repo.Backup()
}
