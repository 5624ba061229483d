package artifact

import (
	"context"
	"sync"
)

// Cache loads the bundle once per process. Failed loads are not cached.
// Later changes to the files on disk are not picked up.
type Cache struct {
	cfg    Config
	loader func(context.Context, Config) (*Bundle, error)

	mu     sync.Mutex
	bundle *Bundle
}

func NewCache(cfg Config) *Cache {
	return &Cache{cfg: cfg, loader: Load}
}

// Get returns the cached bundle, loading it on the first call.
func (c *Cache) Get(ctx context.Context) (*Bundle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bundle != nil {
		return c.bundle, nil
	}
	b, err := c.loader(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	c.bundle = b
	return b, nil
}

// Close releases the cached bundle.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bundle == nil {
		return nil
	}
	err := c.bundle.Close()
	c.bundle = nil
	return err
}
