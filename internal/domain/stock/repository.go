package stock

// Repository is the persistence contract for stock items. Exactly one
// implementation instance exists per backing file for the process
// lifetime; all mutations are serialized by the implementation.
type Repository interface {
	// GetAll returns the current collection, lazy-loading on first access.
	GetAll() []StockItem
	// FindByID returns the item and true, or false when the id is unknown.
	FindByID(id string) (*StockItem, bool)
	// Add appends and persists the item, returning the full collection.
	Add(item StockItem) ([]StockItem, error)
	// Update applies mutate to a copy of the identified item. An unknown
	// id is a no-op returning (nil, nil). If mutate returns an error
	// nothing is persisted and the live record stays untouched.
	Update(id string, mutate func(*StockItem) error) (*StockItem, error)
	// Delete removes the item, persisting only if something was removed.
	Delete(id string) (bool, error)
	// Backup writes a best-effort timestamped snapshot of the backing file.
	Backup() error
}
