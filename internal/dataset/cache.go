package dataset

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cache memoizes the listings table for the lifetime of the process. The file
// is assumed static, so a loaded table is never invalidated. Failed loads are
// not remembered and surface to every caller until one succeeds.
type Cache struct {
	path   string
	opt    LoadOptions
	logger *zap.Logger

	mu    sync.RWMutex
	table *Table
}

// NewCache returns a cache for the file at path. A nil logger disables logging.
func NewCache(path string, opt LoadOptions, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{path: path, opt: opt, logger: logger}
}

// Path returns the file backing the cache.
func (c *Cache) Path() string { return c.path }

// Table returns the cached table, loading it on first use.
func (c *Cache) Table() (*Table, error) {
	c.mu.RLock()
	t := c.table
	c.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Double-check after acquiring write lock
	if c.table != nil {
		return c.table, nil
	}
	start := time.Now()
	t, err := Load(c.path, c.opt)
	if err != nil {
		c.logger.Error("Failed to load listings", zap.String("path", c.path), zap.Error(err))
		return nil, err
	}
	c.table = t
	c.logger.Info("Loaded listings",
		zap.String("path", c.path),
		zap.Int("rows", t.Len()),
		zap.Int("columns", t.Width()),
		zap.Duration("took", time.Since(start)),
	)
	return t, nil
}
