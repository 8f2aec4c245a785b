package persistence

import (
	"github.com/lagerhub/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// StockRepository persists stock items in a JSON collection file.
type StockRepository struct {
	collection *Collection[stock.StockItem]
}

// NewStockRepository creates the repository for the given backing path.
func NewStockRepository(path string, logger *zap.Logger) *StockRepository {
	return &StockRepository{
		collection: NewCollection[stock.StockItem](path, logger),
	}
}

// GetAll returns the current stock collection.
func (r *StockRepository) GetAll() []stock.StockItem {
	return r.collection.GetAll()
}

// FindByID returns the item with the given id.
func (r *StockRepository) FindByID(id string) (*stock.StockItem, bool) {
	return r.collection.Find(id)
}

// Add appends and persists a stock item.
func (r *StockRepository) Add(item stock.StockItem) ([]stock.StockItem, error) {
	return r.collection.Add(item)
}

// Update applies mutate to a copy of the identified item.
func (r *StockRepository) Update(id string, mutate func(*stock.StockItem) error) (*stock.StockItem, error) {
	return r.collection.Update(id, mutate)
}

// Delete removes a stock item.
func (r *StockRepository) Delete(id string) (bool, error) {
	return r.collection.Delete(id)
}

// Backup snapshots the backing file.
func (r *StockRepository) Backup() error {
	return r.collection.Backup()
}

var _ stock.Repository = (*StockRepository)(nil)
