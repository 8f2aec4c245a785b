package listing

import (
	"time"

	"github.com/lagerhub/backend/internal/domain/shared"
	"github.com/lagerhub/backend/internal/domain/shared/valueobject"
)

// AdStatus is the lifecycle state of an externally-listed ad.
type AdStatus string

const (
	StatusActive  AdStatus = "ACTIVE"
	StatusPaused  AdStatus = "PAUSED"
	StatusDraft   AdStatus = "DRAFT"
	StatusDeleted AdStatus = "DELETED"
)

// Ad is one externally-listed advertisement. The stock side references it
// only by id; availability (InStock) is what the synchronization protocol
// keeps aligned with the linked item's quantity.
type Ad struct {
	shared.BaseEntity
	Title      string            `json:"title"`
	Status     AdStatus          `json:"status"`
	InStock    bool              `json:"inStock"`
	PriceCents valueobject.Cents `json:"priceCents,omitempty"`
	Image      string            `json:"image,omitempty"`
	URL        string            `json:"url,omitempty"`
}

// RecordID implements the persistence record contract.
func (a Ad) RecordID() string {
	return a.ID
}

// Clone returns a copy safe to hand to mutators.
func (a Ad) Clone() Ad {
	return a
}

// MarkInStock flips availability on.
func (a *Ad) MarkInStock() {
	a.InStock = true
	a.UpdatedAt = time.Now()
}

// MarkOutOfStock flips availability off.
func (a *Ad) MarkOutOfStock() {
	a.InStock = false
	a.UpdatedAt = time.Now()
}

// Repository is the persistence contract for ads. This is the collaborator
// side of the synchronization protocol.
type Repository interface {
	// GetAll returns the current ad collection.
	GetAll() []Ad
	// Update applies mutate to a copy of the identified ad; unknown ids
	// are a no-op returning (nil, nil).
	Update(id string, mutate func(*Ad) error) (*Ad, error)
	// Delete removes an ad.
	Delete(id string) (bool, error)
	// Backup writes a best-effort timestamped snapshot of the backing file.
	Backup() error
}
