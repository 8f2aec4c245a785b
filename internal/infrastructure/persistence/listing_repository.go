package persistence

import (
	"github.com/lagerhub/backend/internal/domain/listing"
	"go.uber.org/zap"
)

// ListingRepository persists ads in a JSON collection file.
type ListingRepository struct {
	collection *Collection[listing.Ad]
}

// NewListingRepository creates the repository for the given backing path.
func NewListingRepository(path string, logger *zap.Logger) *ListingRepository {
	return &ListingRepository{
		collection: NewCollection[listing.Ad](path, logger),
	}
}

// GetAll returns the current ad collection.
func (r *ListingRepository) GetAll() []listing.Ad {
	return r.collection.GetAll()
}

// Find returns the ad with the given id.
func (r *ListingRepository) Find(id string) (*listing.Ad, bool) {
	return r.collection.Find(id)
}

// Add appends and persists an ad.
func (r *ListingRepository) Add(ad listing.Ad) ([]listing.Ad, error) {
	return r.collection.Add(ad)
}

// Update applies mutate to a copy of the identified ad.
func (r *ListingRepository) Update(id string, mutate func(*listing.Ad) error) (*listing.Ad, error) {
	return r.collection.Update(id, mutate)
}

// Delete removes an ad.
func (r *ListingRepository) Delete(id string) (bool, error) {
	return r.collection.Delete(id)
}

// Backup snapshots the backing file.
func (r *ListingRepository) Backup() error {
	return r.collection.Backup()
}

var _ listing.Repository = (*ListingRepository)(nil)

// DraftRepository persists import drafts in a JSON collection file.
type DraftRepository struct {
	collection *Collection[listing.ImportDraft]
}

// NewDraftRepository creates the repository for the given backing path.
func NewDraftRepository(path string, logger *zap.Logger) *DraftRepository {
	return &DraftRepository{
		collection: NewCollection[listing.ImportDraft](path, logger),
	}
}

// GetAll returns the current draft collection.
func (r *DraftRepository) GetAll() []listing.ImportDraft {
	return r.collection.GetAll()
}

// Add appends and persists a draft.
func (r *DraftRepository) Add(draft listing.ImportDraft) ([]listing.ImportDraft, error) {
	return r.collection.Add(draft)
}

// Delete removes a draft.
func (r *DraftRepository) Delete(id string) (bool, error) {
	return r.collection.Delete(id)
}

var _ listing.DraftRepository = (*DraftRepository)(nil)
