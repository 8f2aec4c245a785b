package listing

import (
	"fmt"
	"time"
)

// ImportDraft is an ad draft generated from a stock item, ready for manual
// publication on an external marketplace. Price is kept as rendered text
// because a zero purchase price produces the "VB" (negotiable) marker
// instead of a number.
type ImportDraft struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	PurchasePrice string    `json:"purchasePrice"`
	Images        []string  `json:"images"`
	Source        string    `json:"source"`
	URL           string    `json:"url"`
	StockID       string    `json:"stockId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RecordID implements the persistence record contract.
func (d ImportDraft) RecordID() string {
	return d.ID
}

// Clone returns a deep copy.
func (d ImportDraft) Clone() ImportDraft {
	out := d
	out.Images = append([]string(nil), d.Images...)
	return out
}

// NewImportDraftID generates an import record identifier.
func NewImportDraftID(now time.Time) string {
	return fmt.Sprintf("IMP-%d", now.UnixMilli())
}

// DraftRepository is the persistence contract for import drafts.
type DraftRepository interface {
	GetAll() []ImportDraft
	Add(draft ImportDraft) ([]ImportDraft, error)
	Delete(id string) (bool, error)
}
