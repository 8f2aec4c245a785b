package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is the contract for records persisted in a Collection. Clone must
// return a deep copy so mutators can never reach live state.
type Record[T any] interface {
	RecordID() string
	Clone() T
}

// Collection is a durable list of records backed by one JSON array file.
//
// Durability contract: save serializes the whole collection, writes it to a
// temporary sibling and atomically renames it over the real path, so the
// on-disk file is always either the pre- or the post-write version, never a
// partial one. A corrupt file on load degrades to an empty in-memory
// collection and is left untouched on disk.
//
// One Collection instance must exist per backing path for the process
// lifetime; a mutex serializes mutations within the process. It is not safe
// for independent processes to share a path.
type Collection[T Record[T]] struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	data   []T
	loaded bool
}

// NewCollection creates a collection backed by the given file path. The
// file is read lazily on first access; its directory is created up front.
func NewCollection[T Record[T]](path string, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Error("failed to create data directory",
			zap.String("path", filepath.Dir(path)),
			zap.Error(err))
	}
	return &Collection[T]{
		path:   path,
		logger: logger.With(zap.String("collection", filepath.Base(path))),
	}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string {
	return c.path
}

// Load reads the backing file into memory. A missing or empty file yields
// an empty collection; malformed content also yields an empty collection
// but reports the error and leaves the file as it is.
func (c *Collection[T]) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

func (c *Collection[T]) loadLocked() error {
	c.loaded = true
	c.data = nil

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		c.logger.Error("failed to read collection file", zap.Error(err))
		return fmt.Errorf("read %s: %w", c.path, err)
	}
	if len(raw) == 0 {
		return nil
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		// Never overwrite the corrupt file; a syntax error must not
		// destroy data that may still be recovered by hand.
		c.logger.Error("collection file is malformed, starting empty", zap.Error(err))
		return fmt.Errorf("parse %s: %w", c.path, err)
	}

	c.data = records
	c.logger.Debug("collection loaded", zap.Int("records", len(records)))
	return nil
}

func (c *Collection[T]) ensureLoadedLocked() {
	if !c.loaded {
		if err := c.loadLocked(); err != nil {
			c.logger.Warn("lazy load failed, continuing with empty collection", zap.Error(err))
		}
	}
}

// GetAll returns a snapshot of the current in-memory state, lazy-loading
// the file on first access.
func (c *Collection[T]) GetAll() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked()
	return c.snapshotLocked()
}

func (c *Collection[T]) snapshotLocked() []T {
	out := make([]T, len(c.data))
	for i, r := range c.data {
		out[i] = r.Clone()
	}
	return out
}

// Find returns a copy of the record with the given id.
func (c *Collection[T]) Find(id string) (*T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked()

	for _, r := range c.data {
		if r.RecordID() == id {
			clone := r.Clone()
			return &clone, true
		}
	}
	return nil, false
}

// Add appends the record and persists, returning the full collection. A
// write failure is reported; the previous on-disk state survives.
func (c *Collection[T]) Add(record T) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked()

	c.data = append(c.data, record)
	err := c.saveLocked()
	return c.snapshotLocked(), err
}

// Update locates the record by id and applies mutate to a copy of it. An
// unknown id is a no-op returning (nil, nil). If mutate returns an error
// nothing is persisted and the live record stays untouched; otherwise the
// slot is replaced, persisted, and the new state returned.
func (c *Collection[T]) Update(id string, mutate func(*T) error) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked()

	for i, r := range c.data {
		if r.RecordID() != id {
			continue
		}

		clone := r.Clone()
		if err := mutate(&clone); err != nil {
			return nil, err
		}

		c.data[i] = clone
		if err := c.saveLocked(); err != nil {
			return nil, err
		}
		result := clone.Clone()
		return &result, nil
	}
	return nil, nil
}

// Delete removes the first record with the given id, persisting only when
// a removal actually occurred.
func (c *Collection[T]) Delete(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked()

	for i, r := range c.data {
		if r.RecordID() == id {
			c.data = append(c.data[:i], c.data[i+1:]...)
			if err := c.saveLocked(); err != nil {
				return true, err
			}
			return true, nil
		}
	}
	return false, nil
}

// saveLocked writes the collection under the atomic-rename contract.
func (c *Collection[T]) saveLocked() error {
	payload, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", c.path, err)
	}
	if c.data == nil {
		payload = []byte("[]")
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		c.logger.Error("failed to write temp file", zap.Error(err))
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		c.logger.Error("failed to rename temp file", zap.Error(err))
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			c.logger.Warn("failed to clean up temp file", zap.Error(rmErr))
		}
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Backup copies the backing file to a timestamped .bak sibling. Best
// effort: a missing backing file is not an error worth failing over.
func (c *Collection[T]) Backup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", c.path, err)
	}

	stamp := time.Now().Format("2006-01-02T15-04-05")
	backupPath := fmt.Sprintf("%s.%s.bak", c.path, stamp)
	if err := os.WriteFile(backupPath, raw, 0o644); err != nil {
		return fmt.Errorf("write backup %s: %w", backupPath, err)
	}
	c.logger.Info("backup written", zap.String("path", backupPath))
	return nil
}
