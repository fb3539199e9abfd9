package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/logger"
)

// DatasetSource produces the raw inputs of a store generation
type DatasetSource interface {
	Load(ctx context.Context) ([]domain.FoodRecord, []domain.SynonymGroup, error)
}

// Catalog serves the current Store generation to concurrent readers and swaps
// in a new generation only after it has been fully built.
type Catalog struct {
	source     DatasetSource
	current    atomic.Pointer[Store]
	generation atomic.Uint64
	reloadMu   sync.Mutex
	log        *logger.Logger
}

// NewCatalog creates an empty catalog. Call Reload before serving traffic.
func NewCatalog(source DatasetSource, log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	return &Catalog{
		source: source,
		log:    log.With("service", "Catalog"),
	}
}

// Current returns the store currently being served
func (c *Catalog) Current() (*Store, error) {
	s := c.current.Load()
	if s == nil {
		return nil, domain.ErrStoreNotReady
	}
	return s, nil
}

// Reload builds a brand-new store from the source and publishes it. On any
// failure the previous generation stays in place.
func (c *Catalog) Reload(ctx context.Context) (*Store, error) {
	if c.source == nil {
		return nil, fmt.Errorf("%w: no dataset source configured", domain.ErrDatasetInvalid)
	}

	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	start := time.Now()
	records, synonyms, err := c.source.Load(ctx)
	if err != nil {
		c.log.Error("dataset load failed", "error", err)
		return nil, err
	}
	store, err := NewStore(records, synonyms)
	if err != nil {
		c.log.Error("store build failed", "error", err)
		return nil, err
	}

	c.Publish(store)
	c.log.Info("store published",
		"generation", store.Generation(),
		"records", store.Len(),
		"synonym_groups", store.SynonymGroups(),
		"duration", time.Since(start))
	return store, nil
}

// Publish assigns the next generation to a freshly built store and swaps it in.
// The store must not be shared before this call.
func (c *Catalog) Publish(store *Store) {
	store.generation = c.generation.Add(1)
	c.current.Store(store)
}
